package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// PickingListGenerator genera el PDF de la lista de alistamiento de una solicitud.
type PickingListGenerator interface {
	GeneratePickingList(ctx context.Context, sol *entity.Solicitud, detalle *dto.DetalleListResponse) ([]byte, error)
}

// PDFUseCase lista de alistamiento (picking) con las asignaciones vigentes.
type PDFUseCase struct {
	tx        ports.TxRunner
	generator PickingListGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(tx ports.TxRunner, generator PickingListGenerator) *PDFUseCase {
	return &PDFUseCase{tx: tx, generator: generator}
}

// AllocationPDF carga solicitud y detalle en una lectura consistente y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)
//   - domain.ErrNotFound   si la solicitud no existe.
//   - domain.ErrValidation si la solicitud no tiene asignaciones.
func (uc *PDFUseCase) AllocationPDF(ctx context.Context, solicitudID int64) (pdfBytes []byte, filename string, err error) {
	var sol *entity.Solicitud
	var detalle *dto.DetalleListResponse
	err = uc.tx.View(ctx, func(r ports.Repos) error {
		var err error
		sol, err = r.Solicitudes.GetByID(ctx, solicitudID)
		if err != nil {
			return err
		}
		if sol == nil {
			return fmt.Errorf("%w: solicitud %d", domain.ErrNotFound, solicitudID)
		}
		lines, err := r.Detalles.ListBySolicitud(ctx, solicitudID)
		if err != nil {
			return err
		}
		detalle, err = buildDetalle(ctx, r, sol, lines)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	if len(detalle.Lineas) == 0 {
		return nil, "", fmt.Errorf("%w: la solicitud %d no tiene asignaciones", domain.ErrValidation, solicitudID)
	}

	pdfBytes, err = uc.generator.GeneratePickingList(ctx, sol, detalle)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("alistamiento_solicitud_%d.pdf", solicitudID), nil
}
