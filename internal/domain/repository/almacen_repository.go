package repository

import (
	"context"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// AlmacenRepository lectura de almacenes (su CRUD vive fuera de este servicio).
type AlmacenRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Almacen, error)
}
