// Provider分组，供wire.go的InitializeApp使用

package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookworld/internal/application/book"
	appcart "github.com/xiebiao/bookworld/internal/application/cart"
	appcourier "github.com/xiebiao/bookworld/internal/application/courier"
	apporder "github.com/xiebiao/bookworld/internal/application/order"
	appsite "github.com/xiebiao/bookworld/internal/application/site"
	appuser "github.com/xiebiao/bookworld/internal/application/user"
	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/user"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence"
	"github.com/xiebiao/bookworld/internal/interface/http/handler"
	"github.com/xiebiao/bookworld/internal/interface/http/middleware"
	"github.com/xiebiao/bookworld/internal/interface/http/router"
)

// infrastructureSet 存储、消息、快递、对象存储
var infrastructureSet = wire.NewSet(
	provideRepositories,
	wire.FieldsOf(new(*persistence.Repositories), "Tx", "Books", "Orders", "Users", "Carts", "Site", "Sessions"),
	providePublisher,
	provideCourierClient,
	provideObjectStorage,
	provideJWTManager,
)

var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	providePricing,
)

var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewAdminUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	providePlaceOrderUseCase,
	apporder.NewQueryUseCase,
	apporder.NewUpdateStatusUseCase,
	apporder.NewCreateShipmentUseCase,
	appcart.NewUseCase,
	appcourier.NewUseCase,
	appsite.NewUseCase,
	provideUploadUseCase,
)

var handlerSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	handler.NewBookHandler,
	handler.NewOrderHandler,
	handler.NewUserHandler,
	handler.NewCartHandler,
	handler.NewCourierHandler,
	handler.NewSiteHandler,
	provideUploadHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideEngine,
)
