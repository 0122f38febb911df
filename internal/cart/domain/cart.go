// Package domain 包含会话购物车的领域模型。
// 购物车是一个显式的值对象快照，按浏览器会话存取，不落关系库。
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidQuantity 数量必须为正整数
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// Entry 购物车行，按商品与变体组合键标识
type Entry struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// EntryKey 组合键：{productID}[_{size}][_{color}]
func EntryKey(productID uint, size, color string) string {
	key := strconv.FormatUint(uint64(productID), 10)
	if size != "" {
		key += "_" + size
	}
	if color != "" {
		key += "_" + color
	}
	return key
}

// Cart 购物车快照
type Cart struct {
	Entries map[string]Entry

	// healed 标记反序列化时迁移或丢弃过旧格式条目，需要回写
	healed bool
}

// New 创建空购物车
func New() *Cart {
	return &Cart{Entries: map[string]Entry{}}
}

// Healed 反序列化时是否做过自愈迁移
func (c *Cart) Healed() bool { return c.healed }

// MarkHealed 标记购物车需要回写（读取时剔除了失效条目）
func (c *Cart) MarkHealed() { c.healed = true }

// IsEmpty 是否为空
func (c *Cart) IsEmpty() bool { return len(c.Entries) == 0 }

// Len 条目数
func (c *Cart) Len() int { return len(c.Entries) }

// Add 合并同组合键条目（数量累加），否则新建
func (c *Cart) Add(productID uint, qty int, size, color string) (string, error) {
	if qty <= 0 {
		return "", ErrInvalidQuantity
	}
	if c.Entries == nil {
		c.Entries = map[string]Entry{}
	}
	key := EntryKey(productID, size, color)
	if existing, ok := c.Entries[key]; ok {
		existing.Quantity += qty
		c.Entries[key] = existing
		return key, nil
	}
	c.Entries[key] = Entry{ProductID: productID, Quantity: qty, Size: size, Color: color}
	return key, nil
}

// Update 设置条目数量；qty <= 0 时等价于删除。返回条目是否存在。
func (c *Cart) Update(key string, qty int) bool {
	entry, ok := c.Entries[key]
	if !ok {
		return false
	}
	if qty <= 0 {
		delete(c.Entries, key)
		return true
	}
	entry.Quantity = qty
	c.Entries[key] = entry
	return true
}

// Remove 删除条目。返回条目是否存在。
func (c *Cart) Remove(key string) bool {
	if _, ok := c.Entries[key]; !ok {
		return false
	}
	delete(c.Entries, key)
	return true
}

// Clear 清空购物车
func (c *Cart) Clear() {
	c.Entries = map[string]Entry{}
}

// MarshalJSON 仅序列化条目映射
func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.Entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Entries)
}

// UnmarshalJSON 解析条目映射并自愈旧格式：
//   - 值为结构化条目：原样保留
//   - 值为裸数量且键为商品 ID（历史格式）：迁移为结构化条目
//   - 其余无法识别的条目：静默丢弃
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("malformed cart payload: %w", err)
	}

	c.Entries = make(map[string]Entry, len(raw))
	c.healed = false

	for key, val := range raw {
		var entry Entry
		if err := json.Unmarshal(val, &entry); err == nil && entry.ProductID != 0 && entry.Quantity > 0 {
			c.Entries[key] = entry
			continue
		}

		var qty int
		productID, idErr := strconv.ParseUint(key, 10, 32)
		if json.Unmarshal(val, &qty) == nil && idErr == nil && qty > 0 {
			newKey := strconv.FormatUint(productID, 10)
			c.Entries[newKey] = Entry{ProductID: uint(productID), Quantity: qty}
			c.healed = true
			continue
		}

		c.healed = true
	}
	return nil
}
