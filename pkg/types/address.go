package types

// Address is the shipping destination snapshotted onto shipments.
type Address struct {
	Street     string `json:"calle"`
	Number     string `json:"numero,omitempty"`
	City       string `json:"ciudad"`
	Province   string `json:"provincia"`
	PostalCode string `json:"codigoPostal"`
	Notes      string `json:"notas,omitempty"`
}
