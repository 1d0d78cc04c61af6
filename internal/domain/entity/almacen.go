package entity

import "time"

// Almacen representa un almacén físico donde se guarda stock (multi-almacén).
type Almacen struct {
	ID        string
	Nombre    string
	Direccion string
	CreatedAt time.Time
}
