package inventory

import (
	"fmt"
	"math"
	"sort"

	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// Delta cambio neto de stock para una clave. Positivo libera, negativo reserva.
type Delta struct {
	Key      entity.StockKey
	Cantidad int64
}

// NetDeltas calcula el cambio neto por clave al reemplazar el conjunto previo por el nuevo:
// las líneas previas se liberan y las nuevas se reservan. Omite claves con neto cero y
// devuelve las claves en orden (orden de bloqueo).
func NetDeltas(previo, nuevo []entity.DetalleLine) []Delta {
	neto := make(map[entity.StockKey]int64, len(previo)+len(nuevo))
	for _, l := range previo {
		neto[l.Key()] += l.Cantidad
	}
	for _, l := range nuevo {
		neto[l.Key()] -= l.Cantidad
	}
	out := make([]Delta, 0, len(neto))
	for k, v := range neto {
		if v == 0 {
			continue
		}
		out = append(out, Delta{Key: k, Cantidad: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// ApplyDelta devuelve la cantidad resultante o ErrInsufficientStock si quedaría negativa.
// Un delta que desborda int64 es ErrValidation.
func ApplyDelta(key entity.StockKey, disponible, delta int64) (int64, error) {
	if delta == math.MinInt64 || (delta > 0 && disponible > math.MaxInt64-delta) {
		return disponible, fmt.Errorf("%w: el delta %d desborda la cantidad de %s (%d unidades)",
			domain.ErrValidation, delta, key, disponible)
	}
	res := disponible + delta
	if res < 0 {
		return disponible, fmt.Errorf("%w: %s tiene %d unidades, se requieren %d",
			domain.ErrInsufficientStock, key, disponible, -delta)
	}
	return res, nil
}

// ValidateLines revisa cantidades positivas, campos obligatorios y que no se repita
// un mismo (almacén, lote) dentro del conjunto.
func ValidateLines(lines []entity.DetalleLine) error {
	seen := make(map[[2]string]struct{}, len(lines))
	for i, l := range lines {
		if l.AlmacenID == "" || l.LoteCodigo == "" || l.MedicamentoCodigo == "" {
			return fmt.Errorf("%w: línea %d: almacen_id, lote y medicamento son obligatorios", domain.ErrValidation, i+1)
		}
		if l.Cantidad <= 0 {
			return fmt.Errorf("%w: línea %d: la cantidad debe ser mayor a cero", domain.ErrValidation, i+1)
		}
		id := [2]string{l.AlmacenID, l.LoteCodigo}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: línea %d: lote %s repetido en el almacén %s", domain.ErrValidation, i+1, l.LoteCodigo, l.AlmacenID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// MovementType tipo de movimiento de auditoría para un delta de asignación.
func MovementType(delta int64) string {
	if delta > 0 {
		return entity.MovimientoLiberacion
	}
	return entity.MovimientoReserva
}
