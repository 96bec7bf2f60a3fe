package dispatch

import "github.com/shopspring/decimal"

// Classification d'un écart dispatché/reçu.
const (
	EcartConforme = "conforme"
	EcartManque   = "manque"
	EcartExces    = "exces"
)

// ClassifyEcart classe l'écart (dispatché - reçu) :
// manque si > tolérance, exces si < -tolérance, conforme sinon.
func ClassifyEcart(ecart decimal.Decimal) string {
	switch {
	case ecart.GreaterThan(Tolerance):
		return EcartManque
	case ecart.LessThan(Tolerance.Neg()):
		return EcartExces
	default:
		return EcartConforme
	}
}

// EcartPourcentage retourne l'écart en pourcentage de la quantité dispatchée
// (0 si rien n'a été dispatché, pour éviter la division par zéro).
func EcartPourcentage(ecart, dispatchee decimal.Decimal) decimal.Decimal {
	if dispatchee.IsZero() {
		return decimal.Zero
	}
	return ecart.Div(dispatchee).Mul(decimal.NewFromInt(100)).Round(2)
}
