package cards

// Card is a catalog entry as served by the cards API. It is never mutated
// after being fetched.
type Card struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ImageURL  string   `json:"imageUrl"`
	Supertype string   `json:"supertype,omitempty"`
	Subtypes  []string `json:"subtypes,omitempty"`
	Types     []string `json:"types,omitempty"`
	HP        string   `json:"hp,omitempty"`
	Set       string   `json:"set,omitempty"`
	Rarity    string   `json:"rarity,omitempty"`
}

// Response is the body of GET /cards.
type Response struct {
	Cards []Card `json:"cards"`
}
