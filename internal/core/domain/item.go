package domain

// Item is a single row of the ledger.
type Item struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"nev" json:"name"`
	Quantity int    `db:"mennyiseg" json:"quantity"`
}
