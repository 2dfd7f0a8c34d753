// Package directory reads and writes business listings through the
// authenticated GraphQL client.
package directory

// Business is a directory listing. The API schema currently carries only
// id, name, category, and description; the remaining fields are defaults
// pending schema support and are never populated from responses.
type Business struct {
	ID          string
	Name        string
	Category    string
	Description string

	// Pending schema support.
	City        string
	State       string
	Rating      float64
	ReviewCount int
	Verified    bool
}

// CreateBusinessInput is the payload for creating a listing. A zero ID is
// assigned by the service.
type CreateBusinessInput struct {
	ID          string `json:"businessId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// apiBusiness mirrors the wire shape of a listing.
type apiBusiness struct {
	BusinessID  string `json:"businessId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (b apiBusiness) toBusiness() Business {
	return Business{
		ID:          b.BusinessID,
		Name:        b.Name,
		Category:    b.Category,
		Description: b.Description,
	}
}
