package repository

// Page paginación limit/offset usada por los listados.
type Page struct {
	Limit  int
	Offset int
}
