package checkout

import (
	"context"
	"fmt"
	"sync"

	"grandson-client/internal/model"
	"grandson-client/internal/transform"
)

// requestedLine aggregates cart demand per product; two lines of the same
// product in different sizes draw from the same stock.
type requestedLine struct {
	productID string
	name      string
	quantity  int
}

// checkStock fetches current stock for every distinct product in the cart
// concurrently and reports the products whose demand exceeds it. Inactive
// and missing products count as zero stock.
func (c *Checkout) checkStock(ctx context.Context, items []model.CartItem) ([]model.StockIssue, error) {
	requested := aggregate(items)

	type stockResult struct {
		index     int
		available int
		err       error
	}

	resultChan := make(chan stockResult, len(requested))
	var wg sync.WaitGroup

	for i, line := range requested {
		wg.Add(1)
		go func(index int, productID string) {
			defer wg.Done()

			available, err := c.fetchStock(ctx, productID)
			resultChan <- stockResult{index: index, available: available, err: err}
		}(i, line.productID)
	}

	wg.Wait()
	close(resultChan)

	available := make([]int, len(requested))
	for result := range resultChan {
		if result.err != nil {
			return nil, fmt.Errorf("stock check failed for %s: %w", requested[result.index].productID, result.err)
		}
		available[result.index] = result.available
	}

	var issues []model.StockIssue
	for i, line := range requested {
		if line.quantity > available[i] {
			issues = append(issues, model.StockIssue{
				ProductID:         line.productID,
				Name:              line.name,
				RequestedQuantity: line.quantity,
				AvailableStock:    available[i],
			})
			c.logger.Debug().
				Str("product_id", line.productID).
				Int("requested", line.quantity).
				Int("available", available[i]).
				Msg("cart line exceeds stock")
		}
	}
	return issues, nil
}

// fetchStock returns the purchasable stock for a product right now.
func (c *Checkout) fetchStock(ctx context.Context, productID string) (int, error) {
	env, err := c.api.Get(ctx, "/api/products/"+productID, false)
	if err != nil {
		if model.IsCode(err, model.ErrCodeNotFound) {
			return 0, nil
		}
		return 0, err
	}

	records, err := env.Records()
	if err != nil || len(records) == 0 {
		return 0, nil
	}

	product := transform.Product(records[0])
	if !product.IsActive {
		return 0, nil
	}
	return product.Stock, nil
}

func aggregate(items []model.CartItem) []requestedLine {
	index := make(map[string]int)
	var lines []requestedLine
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			lines[i].quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, requestedLine{
			productID: item.ProductID,
			name:      item.Name,
			quantity:  item.Quantity,
		})
	}
	return lines
}
