package models

// Bin is an environment-tagged container of items. It only knows how to hold items;
// capacity, safety and ordering policies belong to the inventory engine.
type Bin struct {
	ID          string
	MaxCapacity int
	Temperature float64
	Humidity    float64
	items       []Item
}

// NewBin returns an empty bin.
func NewBin(id string, maxCapacity int, temperature, humidity float64) *Bin {
	return &Bin{
		ID:          id,
		MaxCapacity: maxCapacity,
		Temperature: temperature,
		Humidity:    humidity,
	}
}

// AddItem appends the item unconditionally and reports success.
func (b *Bin) AddItem(item Item) bool {
	b.items = append(b.items, item)
	return true
}

// RemoveItem drops the first item whose name matches exactly.
func (b *Bin) RemoveItem(name string) bool {
	for i := range b.items {
		if b.items[i].Name == name {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// ListItems returns a copy of the current contents.
func (b *Bin) ListItems() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

// ReplaceItems swaps the contents for a copy of items, typically a reordered snapshot.
func (b *Bin) ReplaceItems(items []Item) {
	b.items = make([]Item, len(items))
	copy(b.items, items)
}

// RemoveLot drops the item with the given lot identifier.
func (b *Bin) RemoveLot(lotID string) bool {
	for i := range b.items {
		if b.items[i].LotID == lotID {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// SetLotQuantity overwrites the quantity of one lot.
func (b *Bin) SetLotQuantity(lotID string, quantity int) bool {
	for i := range b.items {
		if b.items[i].LotID == lotID {
			b.items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// SetConditions updates the environmental set-point.
func (b *Bin) SetConditions(temperature, humidity float64) {
	b.Temperature = temperature
	b.Humidity = humidity
}

// TotalQuantity sums the quantity of every stored item.
func (b *Bin) TotalQuantity() int {
	total := 0
	for _, item := range b.items {
		total += item.Quantity
	}
	return total
}

// Len is the number of item records held.
func (b *Bin) Len() int {
	return len(b.items)
}
