package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	cartApp "github.com/mervel/storefront/cart/application"
	cartDomain "github.com/mervel/storefront/cart/domain"
	catalogApp "github.com/mervel/storefront/catalog/application"
	orderApp "github.com/mervel/storefront/orders/application"
	orderDomain "github.com/mervel/storefront/orders/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
)

type StorefrontHandler struct {
	products *catalogApp.ProductService
	carts    *cartApp.CartService
	tracking *orderApp.TrackingService
}

func InitMcpStorefront(products *catalogApp.ProductService, carts *cartApp.CartService, tracking *orderApp.TrackingService) *StorefrontHandler {
	return &StorefrontHandler{
		products: products,
		carts:    carts,
		tracking: tracking,
	}
}

func (h *StorefrontHandler) AddStorefrontTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolTrackOrder(), h.handleTrackOrder)
	mcpServer.AddTool(h.toolListProducts(), h.handleListProducts)
	mcpServer.AddTool(h.toolCartQuote(), h.handleCartQuote)
}

func (h *StorefrontHandler) toolTrackOrder() mcp.Tool {
	return mcp.NewTool(
		"storefront_track_order",
		mcp.WithDescription("Look up orders by order ID, short order ID or customer phone number. Customer names are masked."),
		mcp.WithTitleAnnotation("Track Order"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("query",
			mcp.Description("Order ID (UUID), the last digits of a phone number, or the full phone number. At least 4 characters."),
			mcp.Required(),
		),
	)
}

func (h *StorefrontHandler) handleTrackOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return nil, err
	}

	result, err := h.tracking.Track(ctx, query)
	if err != nil {
		var vErr pkgError.ValidationError
		switch {
		case errors.As(err, &vErr):
			return mcp.NewToolResultError(vErr.Error()), nil
		case errors.Is(err, orderDomain.ErrOrderNotFound):
			return mcp.NewToolResultError("No order found with this ID or phone number"), nil
		}
		return nil, err
	}

	fallback := fmt.Sprintf("Found %d orders", len(result.Orders))
	return mcp.NewToolResultStructured(result, fallback), nil
}

func (h *StorefrontHandler) toolListProducts() mcp.Tool {
	return mcp.NewTool(
		"storefront_list_products",
		mcp.WithDescription("List the active perfumes with their variants and starting price, newest first."),
		mcp.WithTitleAnnotation("List Products"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("category",
			mcp.Description("Optional category filter."),
			mcp.Enum("woody", "spicy", "floral", "musk"),
		),
	)
}

func (h *StorefrontHandler) handleListProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	products, err := h.products.ListActive(ctx, request.GetString("category", ""))
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Found %d products", len(products))
	return mcp.NewToolResultStructured(map[string]any{"products": products}, fallback), nil
}

func (h *StorefrontHandler) toolCartQuote() mcp.Tool {
	return mcp.NewTool(
		"storefront_cart_quote",
		mcp.WithDescription("Price a prospective cart: subtotal, collection discount, shipping and total. Nothing is stored."),
		mcp.WithTitleAnnotation("Quote Cart"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithArray("items",
			mcp.Description("Cart lines."),
			mcp.Required(),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"product_id": map[string]any{"type": "string", "description": "Product slug"},
					"volume":     map[string]any{"type": "string", "description": "Variant volume, e.g. 50ml. Defaults to the product's default volume."},
					"quantity":   map[string]any{"type": "integer", "minimum": 1},
				},
				"required": []string{"product_id"},
			}),
		),
		mcp.WithString("combo_id",
			mcp.Description("Optional collection ID whose discount should apply."),
		),
	)
}

type quoteArgs struct {
	Items   []cartApp.LineInput `json:"items"`
	ComboID string              `json:"combo_id"`
}

func (h *StorefrontHandler) handleCartQuote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args quoteArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if len(args.Items) == 0 && args.ComboID == "" {
		return mcp.NewToolResultError("items must not be empty"), nil
	}
	for i := range args.Items {
		if args.Items[i].Quantity <= 0 {
			args.Items[i].Quantity = 1
		}
	}

	cart, err := h.carts.Build(ctx, args.Items, args.ComboID)
	if err != nil {
		if catalogApp.IsNotFound(err) || errors.Is(err, cartDomain.ErrVariantNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	quote, err := h.carts.Quote(ctx, cart)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("%d items, total %d", quote.TotalItems, quote.Total)
	return mcp.NewToolResultStructured(quote, fallback), nil
}
