// Package lote implementa el registro de lotes de medicamentos.
package lote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	domainlote "github.com/jhoicas/donaciones-api/internal/domain/lote"
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

// DateLayout formato de fechas de lote en la API.
const DateLayout = "2006-01-02"

// UseCase registro de lotes: alta validada, consulta y sugerencia de códigos.
type UseCase struct {
	tx  ports.TxRunner
	log *logger.Logger
	now func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, log *logger.Logger) *UseCase {
	return &UseCase{tx: tx, log: log.Component("lote"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// RegisterLot valida nomenclatura y fechas, verifica el medicamento y persiste el lote.
func (uc *UseCase) RegisterLot(ctx context.Context, in dto.CreateLoteRequest) (*dto.LoteResponse, error) {
	codigo := strings.TrimSpace(in.Codigo)
	if err := domainlote.ValidateCode(codigo); err != nil {
		return nil, err
	}
	fab, err := parseDate("fecha_fabricacion", in.FechaFabricacion)
	if err != nil {
		return nil, err
	}
	venc, err := parseDate("fecha_vencimiento", in.FechaVencimiento)
	if err != nil {
		return nil, err
	}
	if err := domainlote.ValidateDates(fab, venc); err != nil {
		return nil, err
	}
	medCodigo := strings.TrimSpace(in.MedicamentoCodigo)
	if medCodigo == "" {
		return nil, fmt.Errorf("%w: medicamento_codigo es obligatorio", domain.ErrValidation)
	}

	lote := &entity.Lote{
		Codigo:            codigo,
		MedicamentoCodigo: medCodigo,
		FechaFabricacion:  fab,
		FechaVencimiento:  venc,
		CreatedAt:         uc.now(),
	}
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		med, err := r.Medicamentos.GetByCode(ctx, medCodigo)
		if err != nil {
			return err
		}
		if med == nil {
			return fmt.Errorf("%w: medicamento %s", domain.ErrNotFound, medCodigo)
		}
		return r.Lotes.Create(ctx, lote)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lote", lote.Codigo).Str("medicamento", lote.MedicamentoCodigo).Msg("lote registrado")
	return toLoteResponse(lote), nil
}

// SuggestNextCode código candidato para hoy con la secuencia dada. Sin efectos secundarios.
func (uc *UseCase) SuggestNextCode(secuencia int) (*dto.SuggestLoteResponse, error) {
	code, err := domainlote.SuggestCode(uc.now(), secuencia)
	if err != nil {
		return nil, err
	}
	return &dto.SuggestLoteResponse{Codigo: code}, nil
}

// GetByCode obtiene un lote; ErrNotFound si no existe.
func (uc *UseCase) GetByCode(ctx context.Context, codigo string) (*dto.LoteResponse, error) {
	var out *dto.LoteResponse
	err := uc.tx.View(ctx, func(r ports.Repos) error {
		l, err := r.Lotes.GetByCode(ctx, codigo)
		if err != nil {
			return err
		}
		if l == nil {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, codigo)
		}
		out = toLoteResponse(l)
		return nil
	})
	return out, err
}

// List lista lotes paginados, opcionalmente filtrados por medicamento.
func (uc *UseCase) List(ctx context.Context, medicamento string, page dto.PageRequest) (*dto.LoteListResponse, error) {
	page.Normalize()
	var out *dto.LoteListResponse
	err := uc.tx.View(ctx, func(r ports.Repos) error {
		list, total, err := r.Lotes.List(ctx, repository.LoteFilter{
			MedicamentoCodigo: medicamento,
			Limit:             page.Limit,
			Offset:            page.Offset(),
		})
		if err != nil {
			return err
		}
		items := make([]dto.LoteResponse, 0, len(list))
		for _, l := range list {
			items = append(items, *toLoteResponse(l))
		}
		out = &dto.LoteListResponse{Data: items, Pagination: dto.NewPagination(total, page)}
		return nil
	})
	return out, err
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrValidation, field)
	}
	return t, nil
}

func toLoteResponse(l *entity.Lote) *dto.LoteResponse {
	return &dto.LoteResponse{
		Codigo:            l.Codigo,
		MedicamentoCodigo: l.MedicamentoCodigo,
		FechaFabricacion:  l.FechaFabricacion.Format(DateLayout),
		FechaVencimiento:  l.FechaVencimiento.Format(DateLayout),
		CreatedAt:         l.CreatedAt,
	}
}
