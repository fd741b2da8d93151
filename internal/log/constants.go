package log

const (
	KeyAppName       = "app"
	KeyCartLine      = "cartLine"
	KeyCartLines     = "cartLines"
	KeyCategoryID    = "categoryId"
	KeyConfig        = "config"
	KeyEvent         = "event"
	KeyNotification  = "notification"
	KeyOrderID       = "orderId"
	KeyProcess       = "process"
	KeyProductID     = "productId"
	KeyQuantity      = "quantity"
	KeyRequestID     = "requestId"
	KeyRequestMethod = "requestMethod"
	KeyRequestURL    = "requestURL"
	KeySize          = "size"
	KeyTag           = "tag"
)
