package handlers

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
)

// RegisterRoutes mounts the ticket API on r.
func RegisterRoutes(r *router.Router[*core.RequestEvent], items *ItemHandler) {
	r.GET(routeItems, items.ListItems)
	r.POST(routeItems, items.CreateItem)
	r.GET(routeItem, items.GetItem)
	r.PATCH(routeItem, items.UpdateItemStatus)
	r.DELETE(routeItem, items.DeleteItem)

	r.GET("/health", HealthCheck)
}
