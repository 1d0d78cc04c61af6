// Package memory implementa el almacenamiento transaccional en memoria.
// Se usa en desarrollo (STORAGE_DRIVER=memory) y en los tests de casos de uso y HTTP.
//
// Cada Run trabaja sobre una copia del estado bajo el candado de escritura y solo la publica
// si la función termina sin error: las transacciones son serializables y todo-o-nada.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

var errReadOnly = errors.New("memory: escritura en transacción de solo lectura")

type state struct {
	lotes        map[string]entity.Lote
	medicamentos map[string]entity.Medicamento
	almacenes    map[string]entity.Almacen
	stock        map[entity.StockKey]entity.StockEntry
	movimientos  []entity.StockMovement
	solicitudes  map[int64]entity.Solicitud
	detalles     map[int64][]entity.DetalleLine
	historial    map[int64][]entity.SolicitudHistorial
	despachos    map[int64]entity.Despacho
	nextID       int64
}

func newState() *state {
	return &state{
		lotes:        map[string]entity.Lote{},
		medicamentos: map[string]entity.Medicamento{},
		almacenes:    map[string]entity.Almacen{},
		stock:        map[entity.StockKey]entity.StockEntry{},
		solicitudes:  map[int64]entity.Solicitud{},
		detalles:     map[int64][]entity.DetalleLine{},
		historial:    map[int64][]entity.SolicitudHistorial{},
		despachos:    map[int64]entity.Despacho{},
	}
}

// clone copia profunda; los valores de los mapas son structs y los slices se duplican.
func (s *state) clone() *state {
	c := &state{
		lotes:        make(map[string]entity.Lote, len(s.lotes)),
		medicamentos: make(map[string]entity.Medicamento, len(s.medicamentos)),
		almacenes:    make(map[string]entity.Almacen, len(s.almacenes)),
		stock:        make(map[entity.StockKey]entity.StockEntry, len(s.stock)),
		movimientos:  make([]entity.StockMovement, len(s.movimientos)),
		solicitudes:  make(map[int64]entity.Solicitud, len(s.solicitudes)),
		detalles:     make(map[int64][]entity.DetalleLine, len(s.detalles)),
		historial:    make(map[int64][]entity.SolicitudHistorial, len(s.historial)),
		despachos:    make(map[int64]entity.Despacho, len(s.despachos)),
		nextID:       s.nextID,
	}
	for k, v := range s.lotes {
		c.lotes[k] = v
	}
	for k, v := range s.medicamentos {
		c.medicamentos[k] = v
	}
	for k, v := range s.almacenes {
		c.almacenes[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	copy(c.movimientos, s.movimientos)
	for k, v := range s.solicitudes {
		v.Documentos = append([]entity.Documento(nil), v.Documentos...)
		c.solicitudes[k] = v
	}
	for k, v := range s.detalles {
		c.detalles[k] = append([]entity.DetalleLine(nil), v...)
	}
	for k, v := range s.historial {
		c.historial[k] = append([]entity.SolicitudHistorial(nil), v...)
	}
	for k, v := range s.despachos {
		c.despachos[k] = v
	}
	return c
}

// Store almacenamiento en memoria con semántica transaccional.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn de forma serializada sobre una copia del estado y la publica solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(reposFor(work, false)); err != nil {
		return err
	}
	s.state = work
	return nil
}

// View ejecuta fn con lectura consistente; las escrituras fallan.
func (s *Store) View(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(reposFor(s.state, true))
}

// SeedMedicamento registra un medicamento del catálogo externo.
func (s *Store) SeedMedicamento(m entity.Medicamento) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.medicamentos[m.Codigo] = m
}

// SeedAlmacen registra un almacén.
func (s *Store) SeedAlmacen(a entity.Almacen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.almacenes[a.ID] = a
}

func reposFor(st *state, readOnly bool) ports.Repos {
	return ports.Repos{
		Lotes:        &loteRepo{st: st, ro: readOnly},
		Medicamentos: &medicamentoRepo{st: st},
		Almacenes:    &almacenRepo{st: st},
		Stock:        &stockRepo{st: st, ro: readOnly},
		Movimientos:  &movimientoRepo{st: st, ro: readOnly},
		Solicitudes:  &solicitudRepo{st: st, ro: readOnly},
		Detalles:     &detalleRepo{st: st, ro: readOnly},
	}
}
