package mockapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var deliveryFee = decimal.RequireFromString("2.00")

func addressJSON(a Address) map[string]any {
	return map[string]any{
		"id":          a.ID,
		"name":        a.Name,
		"city":        a.City,
		"state":       a.State,
		"country":     a.Country,
		"address":     a.Address,
		"phone":       a.Phone,
		"postal_code": a.PostalCode,
	}
}

func (s *Server) handleAddresses(c echo.Context) error {
	var addresses []Address
	if err := s.db.Where("account_id = ?", currentAccount(c).ID).Find(&addresses).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "could not load addresses")
	}

	out := make([]map[string]any, len(addresses))
	for i, a := range addresses {
		out[i] = addressJSON(a)
	}
	return ok(c, "", out)
}

type createOrderRequest struct {
	ShippingAddressID uint   `json:"shipping_address_id"`
	BillingAddressID  uint   `json:"billing_address_id"`
	PaymentMethod     string `json:"payment_method"`
	Items             []struct {
		ProductID  uint `json:"product_id"`
		PackSizeID uint `json:"pack_size_id"`
		Quantity   int  `json:"quantity"`
	} `json:"items"`
}

func (s *Server) handleCreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if len(req.Items) == 0 {
		return fail(c, http.StatusBadRequest, "order has no items")
	}
	if req.ShippingAddressID == 0 || req.BillingAddressID == 0 {
		return fail(c, http.StatusBadRequest, "shipping and billing address are required")
	}

	account := currentAccount(c)

	order := Order{
		AccountID:         account.ID,
		Status:            "pending",
		PaymentMethod:     req.PaymentMethod,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		Discount:          decimal.Zero,
		DeliveryFee:       deliveryFee,
		TransactionID:     uuid.NewString(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		subtotal := decimal.Zero
		var items []OrderItem
		for _, it := range req.Items {
			var product Product
			if err := tx.First(&product, it.ProductID).Error; err != nil {
				return err
			}
			qty := it.Quantity
			if qty < 1 {
				qty = 1
			}
			subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
			items = append(items, OrderItem{
				ProductID:  product.ID,
				PackSizeID: it.PackSizeID,
				Name:       product.Name,
				Image:      product.Image,
				Quantity:   qty,
				Price:      product.Price,
			})
		}

		order.Subtotal = subtotal
		order.Total = subtotal.Sub(order.Discount).Add(order.DeliveryFee)
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not create order")
	}

	// The real backend wraps creation results one level deeper than every
	// other endpoint; clients probe for data.data.id.
	return ok(c, "order created", map[string]any{
		"data": map[string]any{
			"id":             order.ID,
			"transaction_id": order.TransactionID,
		},
	})
}

func (s *Server) orderJSON(order Order, includeItems bool) map[string]any {
	out := map[string]any{
		"id":                  order.ID,
		"order_id":            order.ID,
		"status":              order.Status,
		"payment_method":      order.PaymentMethod,
		"shipping_address_id": order.ShippingAddressID,
		"billing_address_id":  order.BillingAddressID,
		"subtotal":            order.Subtotal.String(),
		"discount":            order.Discount.String(),
		"delivery_fee":        order.DeliveryFee.String(),
		"total":               order.Total.String(),
		"transaction_id":      order.TransactionID,
		"created_at":          order.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if includeItems {
		var items []OrderItem
		s.db.Where("order_id = ?", order.ID).Find(&items)
		list := make([]map[string]any, len(items))
		for i, it := range items {
			list[i] = map[string]any{
				"product_id": it.ProductID,
				"name":       it.Name,
				"image":      it.Image,
				"quantity":   it.Quantity,
				"price":      it.Price.String(),
			}
		}
		out["items"] = list
	}
	return out
}

func (s *Server) handleListOrders(c echo.Context) error {
	var orders []Order
	err := s.db.Where("account_id = ?", currentAccount(c).ID).
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not load orders")
	}

	out := make([]map[string]any, len(orders))
	for i, o := range orders {
		out[i] = s.orderJSON(o, true)
	}
	return ok(c, "", out)
}

func (s *Server) findOrder(c echo.Context) (*Order, error) {
	var order Order
	err := s.db.Where("id = ? AND account_id = ?", c.Param("id"), currentAccount(c).ID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Server) handleGetOrder(c echo.Context) error {
	order, err := s.findOrder(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "order not found")
	}

	// No inline address detail; clients backfill it from /addresses.
	return ok(c, "", map[string]any{"order": s.orderJSON(*order, true)})
}

func (s *Server) handleCancelOrder(c echo.Context) error {
	order, err := s.findOrder(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "order not found")
	}

	switch order.Status {
	case "pending", "processing", "in-progress":
	default:
		return fail(c, http.StatusConflict, "order can no longer be cancelled")
	}

	order.Status = "cancelled"
	if err := s.db.Save(order).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "could not cancel order")
	}
	return ok(c, "order cancelled", nil)
}

func (s *Server) handleFavoriteList(c echo.Context) error {
	var favorites []Favorite
	if err := s.db.Where("account_id = ?", currentAccount(c).ID).Find(&favorites).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "could not load favorites")
	}

	items := make([]map[string]any, 0, len(favorites))
	for _, f := range favorites {
		var product Product
		if err := s.db.First(&product, f.ProductID).Error; err != nil {
			continue
		}
		items = append(items, map[string]any{
			"product_id": f.ProductID,
			"product": map[string]any{
				"id":          product.ID,
				"name":        product.Name,
				"name_en":     product.NameEn,
				"category_id": product.CategoryID,
				"price":       product.Price.String(),
				"image":       product.Image,
			},
		})
	}

	// Favorites come wrapped under data.items, unlike the other lists.
	return ok(c, "", map[string]any{"items": items})
}

func (s *Server) handleToggleFavorite(c echo.Context) error {
	account := currentAccount(c)

	var product Product
	if err := s.db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		return fail(c, http.StatusNotFound, "product not found")
	}

	var favorite Favorite
	err := s.db.Where("account_id = ? AND product_id = ?", account.ID, product.ID).
		First(&favorite).Error
	if err == nil {
		if err := s.db.Delete(&favorite).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "could not update favorites")
		}
		return ok(c, "removed from favorites", nil)
	}

	favorite = Favorite{AccountID: account.ID, ProductID: product.ID}
	if err := s.db.Create(&favorite).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "could not update favorites")
	}
	return ok(c, "added to favorites", nil)
}
