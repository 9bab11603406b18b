package models

// Item represents a catalog item
type Item struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Tags        []string `json:"tags"`
	IsOffer     bool     `json:"is_offer"`
}

// ItemPayload represents the create/replace request body (id is server-assigned)
type ItemPayload struct {
	Name        string   `json:"name" validate:"required,min=1,max=50"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Tags        []string `json:"tags"`
	IsOffer     bool     `json:"is_offer"`
}

// ToItem builds an Item from the payload with the given id
func (p *ItemPayload) ToItem(id int) Item {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return Item{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Tags:        tags,
		IsOffer:     p.IsOffer,
	}
}

// ItemPatch represents a partial update. Nil fields were omitted by the
// caller and must be left untouched.
type ItemPatch struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Price       *float64  `json:"price" validate:"omitempty,gt=0"`
	Tags        *[]string `json:"tags"`
	IsOffer     *bool     `json:"is_offer"`
}

// Apply merges the supplied fields into the item
func (p *ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Tags != nil {
		item.Tags = *p.Tags
	}
	if p.IsOffer != nil {
		item.IsOffer = *p.IsOffer
	}
}
