package box

import "context"

// AI ask modes.
const (
	AIModeSingleItem   = "single_item_qa"
	AIModeMultipleItem = "multiple_item_qa"
)

// AIAsk asks the Box AI endpoint a question grounded on the given items.
// Mode must match the item count: single_item_qa for one item,
// multiple_item_qa for several.
func (c *Client) AIAsk(ctx context.Context, mode, prompt string, items []AIItem) (*AIResponse, error) {
	body := map[string]any{
		"mode":   mode,
		"prompt": prompt,
		"items":  items,
	}
	var resp AIResponse
	if err := c.post(ctx, "/ai/ask", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
