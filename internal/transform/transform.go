// Package transform normalizes loosely-typed backend records into frontend
// shapes. Every function is total: missing optional fields fall back to safe
// defaults, and records that already carry the frontend field names pass
// through unchanged, so applying a transform twice never corrupts a record.
package transform

import "grandson-client/internal/model"

// Product maps a backend product record to its frontend shape.
// Stock defaults to 0, sizes and images to empty lists; colors stays nil
// unless the record carries a list.
func Product(raw map[string]any) model.Product {
	return model.Product{
		ID:          str(raw, "id", "_id"),
		Name:        str(raw, "name"),
		Description: str(raw, "description"),
		Price:       num(raw, "price"),
		Category:    str(raw, "category"),
		Sizes:       strList(raw, "sizes"),
		Images:      strList(raw, "images"),
		Colors:      strListOrNil(raw, "colors"),
		Stock:       num(raw, "stock"),
		IsActive:    boolOr(raw, true, "is_active", "isActive"),
		CreatedAt:   timeVal(raw, "created_at", "createdAt"),
		UpdatedAt:   timeVal(raw, "updated_at", "updatedAt"),
	}
}

// Products maps a list of backend product records.
func Products(raw []map[string]any) []model.Product {
	products := make([]model.Product, len(raw))
	for i, r := range raw {
		products[i] = Product(r)
	}
	return products
}

// Order maps a backend order record to its frontend shape, including its
// line items.
func Order(raw map[string]any) model.Order {
	return model.Order{
		ID:              str(raw, "id", "_id"),
		OrderNumber:     str(raw, "order_number", "orderNumber"),
		CustomerName:    str(raw, "customer_name", "customerName"),
		CustomerPhone:   str(raw, "customer_phone", "customerPhone"),
		CustomerEmail:   str(raw, "customer_email", "customerEmail"),
		DeliveryAddress: str(raw, "delivery_address", "deliveryAddress"),
		DeliveryZone:    str(raw, "delivery_zone", "deliveryZone"),
		DeliveryFee:     num(raw, "delivery_fee", "deliveryFee"),
		TotalAmount:     num(raw, "total_amount", "totalAmount"),
		Status:          model.OrderStatus(str(raw, "status")),
		Items:           orderItems(raw),
		CreatedAt:       timeVal(raw, "created_at", "createdAt"),
		UpdatedAt:       timeVal(raw, "updated_at", "updatedAt"),
	}
}

// Orders maps a list of backend order records.
func Orders(raw []map[string]any) []model.Order {
	orders := make([]model.Order, len(raw))
	for i, r := range raw {
		orders[i] = Order(r)
	}
	return orders
}

func orderItems(raw map[string]any) []model.OrderItem {
	list, ok := raw["items"].([]any)
	if !ok {
		return []model.OrderItem{}
	}
	items := make([]model.OrderItem, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, model.OrderItem{
			ProductID: str(m, "product_id", "productId"),
			Name:      str(m, "name"),
			Size:      str(m, "size"),
			Quantity:  num(m, "quantity"),
			Price:     num(m, "price"),
		})
	}
	return items
}

// DeliveryZone maps a backend delivery zone record to its frontend shape.
func DeliveryZone(raw map[string]any) model.DeliveryZone {
	return model.DeliveryZone{
		ID:        str(raw, "id", "_id"),
		Name:      str(raw, "name"),
		Price:     num(raw, "price"),
		IsActive:  boolOr(raw, true, "is_active", "isActive"),
		CreatedAt: timeVal(raw, "created_at", "createdAt"),
	}
}

// DeliveryZones maps a list of backend delivery zone records.
func DeliveryZones(raw []map[string]any) []model.DeliveryZone {
	zones := make([]model.DeliveryZone, len(raw))
	for i, r := range raw {
		zones[i] = DeliveryZone(r)
	}
	return zones
}

// PageContent maps a backend page content record to its frontend shape.
func PageContent(raw map[string]any) model.PageContent {
	return model.PageContent{
		ID:        str(raw, "id", "_id"),
		Page:      str(raw, "page"),
		Section:   str(raw, "section"),
		Title:     str(raw, "title"),
		Content:   str(raw, "content"),
		IsActive:  boolOr(raw, true, "is_active", "isActive"),
		UpdatedAt: timeVal(raw, "updated_at", "updatedAt"),
	}
}

// PageContents maps a list of backend page content records.
func PageContents(raw []map[string]any) []model.PageContent {
	contents := make([]model.PageContent, len(raw))
	for i, r := range raw {
		contents[i] = PageContent(r)
	}
	return contents
}
