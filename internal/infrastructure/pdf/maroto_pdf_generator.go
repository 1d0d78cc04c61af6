// Package pdf genera la lista de alistamiento (picking) de una solicitud.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Lista de alistamiento  │  Solicitud N° + Estado    │
//	│  SOLICITANTE: centro médico / patología                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Almacén | Lote | Vence | Medicamento | Cant. | Dosis│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL UNIDADES                                             │
//	│  FIRMAS: alistó / revisó / recibió                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/inventory"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

var _ inventory.PickingListGenerator = (*MarotoPDFGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 90}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// MarotoPDFGenerator implementa inventory.PickingListGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	now func() time.Time
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{now: time.Now} }

// GeneratePickingList genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GeneratePickingList(
	_ context.Context,
	sol *entity.Solicitud,
	detalle *dto.DetalleListResponse,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Alistamiento solicitud %d", sol.ID), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sol, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(solicitanteRow(sol))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(detalle.Lineas)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(detalle.TotalUnidades))
	m.AddRows(line.NewRow(12))
	m.AddRows(firmasRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(sol *entity.Solicitud, at time.Time) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New("LISTA DE ALISTAMIENTO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generada: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(2).Add(code.NewBar(strconv.FormatInt(sol.ID, 10), props.Barcode{Percent: 90, Center: true})),
		col.New(2).Add(
			text.New(fmt.Sprintf("N° %d", sol.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2,
			}),
			text.New(string(sol.Estado), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

func solicitanteRow(sol *entity.Solicitud) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("SOLICITANTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Centro médico: %s   |   Patología: %s",
				sol.SolicitanteID,
				nonEmpty(sol.CentroMedico, "-"),
				nonEmpty(sol.Patologia, "-"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Almacén", 2, align.Left),
		h("Lote", 2, align.Left),
		h("Vence", 1, align.Center),
		h("Medicamento", 3, align.Left),
		h("Cant.", 1, align.Center),
		h("Dosis / tratamiento", 3, align.Left),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableDetailRows(lines []dto.DetalleLineResponse) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, l := range lines {
		dosis := l.DosisIndicada
		if l.TiempoTratamiento != "" {
			dosis = nonEmpty(dosis, "-") + " / " + l.TiempoTratamiento
		}
		rows = append(rows, row.New(8).Add(
			cell(l.AlmacenNombre, 2, align.Left),
			cell(l.LoteCodigo, 2, align.Left),
			cell(l.FechaVencimiento, 1, align.Center),
			cell(l.MedicamentoNombre, 3, align.Left),
			cell(strconv.FormatInt(l.Cantidad, 10), 1, align.Center),
			cell(nonEmpty(dosis, "-"), 3, align.Left),
		))
	}
	return rows
}

func totalRow(total int64) core.Row {
	return row.New(8).Add(
		col.New(8).Add(text.New("TOTAL UNIDADES:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1, Right: 2,
		})),
		col.New(1).Add(text.New(strconv.FormatInt(total, 10), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Center, Color: colorPrimary, Top: 1,
		})),
		col.New(3),
	)
}

func firmasRow() core.Row {
	firma := func(label string) core.Col {
		return col.New(4).Add(
			text.New("______________________________", props.Text{Size: 8, Align: align.Center}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 5, Color: colorGray}),
		)
	}
	return row.New(14).Add(firma("Alistó"), firma("Revisó"), firma("Recibió"))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
