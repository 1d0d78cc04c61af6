// Package solicitud implementa el alta, la consulta y el flujo de revisión de solicitudes de donación.
package solicitud

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
	domainsol "github.com/jhoicas/donaciones-api/internal/domain/solicitud"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

// MaxObservaciones longitud máxima (en caracteres) de las observaciones.
const MaxObservaciones = 2000

// AllocationReleaser libera todas las asignaciones de una solicitud dentro de la transacción del llamador.
type AllocationReleaser interface {
	ReleaseAllInTx(ctx context.Context, r ports.Repos, solicitudID int64, usuarioID string) error
}

// UseCase solicitudes de donación.
type UseCase struct {
	tx       ports.TxRunner
	releaser AllocationReleaser
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, releaser AllocationReleaser, log *logger.Logger) *UseCase {
	return &UseCase{tx: tx, releaser: releaser, log: log.Component("solicitud"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create registra una solicitud en PENDIENTE con sus documentos validados.
func (uc *UseCase) Create(ctx context.Context, usuarioID string, in dto.CreateSolicitudRequest) (*dto.SolicitudResponse, error) {
	s := &entity.Solicitud{
		SolicitanteID: strings.TrimSpace(in.SolicitanteID),
		TipoSolicitud: strings.TrimSpace(in.TipoSolicitud),
		CentroMedico:  strings.TrimSpace(in.CentroMedico),
		Patologia:     strings.TrimSpace(in.Patologia),
		Estado:        domainsol.EstadoInicial,
		Observaciones: strings.TrimSpace(in.Observaciones),
		CreatedBy:     usuarioID,
	}
	if s.SolicitanteID == "" || s.TipoSolicitud == "" {
		return nil, fmt.Errorf("%w: solicitante_id y tipo_solicitud son obligatorios", domain.ErrValidation)
	}
	if err := checkObservaciones(s.Observaciones); err != nil {
		return nil, err
	}
	docs, err := parseDocumentos(in.Documentos)
	if err != nil {
		return nil, err
	}
	s.Documentos = docs

	now := uc.now()
	s.CreatedAt, s.UpdatedAt = now, now
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := r.Solicitudes.Create(ctx, s); err != nil {
			return err
		}
		return r.Solicitudes.AddHistorial(ctx, &entity.SolicitudHistorial{
			SolicitudID:   s.ID,
			EstadoNuevo:   s.Estado,
			Observaciones: s.Observaciones,
			UsuarioID:     usuarioID,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("solicitud", s.ID).Str("usuario", usuarioID).Msg("solicitud creada")
	return toResponse(s, nil), nil
}

// Get obtiene una solicitud con sus siguientes estados posibles y el despacho, si existe.
func (uc *UseCase) Get(ctx context.Context, id int64) (*dto.SolicitudResponse, error) {
	var out *dto.SolicitudResponse
	err := uc.tx.View(ctx, func(r ports.Repos) error {
		s, err := r.Solicitudes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("%w: solicitud %d", domain.ErrNotFound, id)
		}
		d, err := r.Solicitudes.GetDespacho(ctx, id)
		if err != nil {
			return err
		}
		out = toResponse(s, d)
		return nil
	})
	return out, err
}

// List solicitudes paginadas, más recientes primero. estado vacío no filtra.
func (uc *UseCase) List(ctx context.Context, estado string, page dto.PageRequest) (*dto.SolicitudListResponse, error) {
	page.Normalize()
	f := repository.SolicitudFilter{Limit: page.Limit, Offset: page.Offset()}
	if estado = strings.TrimSpace(estado); estado != "" {
		e, err := domainsol.ParseEstado(strings.ToUpper(estado))
		if err != nil {
			return nil, err
		}
		f.Estado = e
	}
	var out *dto.SolicitudListResponse
	err := uc.tx.View(ctx, func(r ports.Repos) error {
		list, total, err := r.Solicitudes.List(ctx, f)
		if err != nil {
			return err
		}
		items := make([]dto.SolicitudResponse, 0, len(list))
		for _, s := range list {
			items = append(items, *toResponse(s, nil))
		}
		out = &dto.SolicitudListResponse{Data: items, Pagination: dto.NewPagination(total, page)}
		return nil
	})
	return out, err
}

// History cambios de estado en orden cronológico.
func (uc *UseCase) History(ctx context.Context, id int64) ([]dto.HistorialResponse, error) {
	var out []dto.HistorialResponse
	err := uc.tx.View(ctx, func(r ports.Repos) error {
		s, err := r.Solicitudes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("%w: solicitud %d", domain.ErrNotFound, id)
		}
		hs, err := r.Solicitudes.ListHistorial(ctx, id)
		if err != nil {
			return err
		}
		out = make([]dto.HistorialResponse, 0, len(hs))
		for _, h := range hs {
			out = append(out, dto.HistorialResponse{
				EstadoAnterior: string(h.EstadoAnterior),
				EstadoNuevo:    string(h.EstadoNuevo),
				Observaciones:  h.Observaciones,
				UsuarioID:      h.UsuarioID,
				CreatedAt:      h.CreatedAt,
			})
		}
		return nil
	})
	return out, err
}

func checkObservaciones(s string) error {
	if utf8.RuneCountInString(s) > MaxObservaciones {
		return fmt.Errorf("%w: observaciones supera %d caracteres", domain.ErrValidation, MaxObservaciones)
	}
	return nil
}

func parseDocumentos(in []dto.DocumentoDTO) ([]entity.Documento, error) {
	out := make([]entity.Documento, 0, len(in))
	for i, d := range in {
		tipo := entity.TipoDocumento(strings.ToLower(strings.TrimSpace(d.Tipo)))
		switch tipo {
		case entity.DocumentoReceta, entity.DocumentoInformeMedico, entity.DocumentoIdentificacion, entity.DocumentoOtro:
		default:
			return nil, fmt.Errorf("%w: documento %d: tipo %q no admitido", domain.ErrValidation, i+1, d.Tipo)
		}
		nombre := strings.TrimSpace(d.Nombre)
		if nombre == "" {
			return nil, fmt.Errorf("%w: documento %d: nombre es obligatorio", domain.ErrValidation, i+1)
		}
		u, err := url.Parse(strings.TrimSpace(d.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%w: documento %d: url debe ser http(s) absoluta", domain.ErrValidation, i+1)
		}
		out = append(out, entity.Documento{Tipo: tipo, Nombre: nombre, URL: u.String()})
	}
	return out, nil
}

func toResponse(s *entity.Solicitud, d *entity.Despacho) *dto.SolicitudResponse {
	docs := make([]dto.DocumentoDTO, 0, len(s.Documentos))
	for _, doc := range s.Documentos {
		docs = append(docs, dto.DocumentoDTO{Tipo: string(doc.Tipo), Nombre: doc.Nombre, URL: doc.URL})
	}
	next := domainsol.NextStates(s.Estado)
	siguientes := make([]string, 0, len(next))
	for _, e := range next {
		siguientes = append(siguientes, string(e))
	}
	out := &dto.SolicitudResponse{
		ID:                s.ID,
		SolicitanteID:     s.SolicitanteID,
		TipoSolicitud:     s.TipoSolicitud,
		CentroMedico:      s.CentroMedico,
		Patologia:         s.Patologia,
		Documentos:        docs,
		Estado:            string(s.Estado),
		Observaciones:     s.Observaciones,
		SiguientesEstados: siguientes,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if d != nil {
		out.Despacho = &dto.DespachoDTO{UsuarioID: d.UsuarioID, FechaDespacho: d.FechaDespacho}
	}
	return out
}
