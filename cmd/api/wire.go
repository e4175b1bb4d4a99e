//go:build wireinject
// +build wireinject

// Wire依赖注入配置，修改后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"net/http"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	appaddress "github.com/xiebiao/mall/internal/application/address"
	appcart "github.com/xiebiao/mall/internal/application/cart"
	"github.com/xiebiao/mall/internal/application/checkout"
	apporder "github.com/xiebiao/mall/internal/application/order"
	appproduct "github.com/xiebiao/mall/internal/application/product"
	appuser "github.com/xiebiao/mall/internal/application/user"
	"github.com/xiebiao/mall/internal/infrastructure/config"
	"github.com/xiebiao/mall/internal/infrastructure/persistence"
	"github.com/xiebiao/mall/internal/interface/http/handler"
	"github.com/xiebiao/mall/internal/interface/http/router"
)

// infrastructureSet 存储、缓存、消息
var infrastructureSet = wire.NewSet(
	provideBackend,
	wire.FieldsOf(new(*persistence.Backend), "Tx", "Users", "Products", "Carts", "Addresses", "Orders"),
	provideRedis,
	provideSessionStore,
	provideIdempotencyStore,
	providePublisher,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	provideUserService,
	provideGuard,
	provideLedger,
	provideJWTManager,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	provideCheckoutConfig,
	checkout.NewAssembler,
	wire.Value([]checkout.Option(nil)),
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	appuser.NewLogoutUseCase,
	appcart.NewCartUseCase,
	apporder.NewQueryUseCase,
	apporder.NewLifecycleUseCase,
	appproduct.NewCatalogUseCase,
	appaddress.NewAddressUseCase,
)

// interfaceSet HTTP处理器和路由
var interfaceSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewProductHandler,
	handler.NewAddressHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideAuthMiddleware,
	provideServer,
)

// InitializeServer 组装HTTP服务
// cleanup按创建的逆序释放数据库、Redis和消息连接
func InitializeServer(cfg *config.Config, logger zerolog.Logger) (*http.Server, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
