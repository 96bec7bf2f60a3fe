package dispatch

import (
	"github.com/shopspring/decimal"
	"github.com/sotramag/tonnage-api/internal/domain/entity"
)

// Tolerance absorbe les arrondis de saisie sur les quantités en tonnes.
var Tolerance = decimal.NewFromFloat(0.01)

// LivreParType cumule les quantités des livraisons non annulées du type donné.
func LivreParType(livraisons []*entity.Livraison, typeLivraison string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range livraisons {
		if l.Annulee() || l.TypeLivraison != typeLivraison {
			continue
		}
		total = total.Add(l.QuantiteLivree)
	}
	return total
}

// Restant retourne prevu - livre, plancher à zéro.
func Restant(prevu, livre decimal.Decimal) decimal.Decimal {
	r := prevu.Sub(livre)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// ComputeStatut dérive le statut d'un dispatch de l'état courant de ses
// livraisons. Fonction pure des données, pas de l'historique des transitions :
// un rejeu désordonné d'événements ne peut pas produire de transition illégale.
//
//	planifie : aucune livraison non annulée
//	en_cours : au moins une livraison non annulée et un restant > tolérance
//	complete : les deux sous-allocations ont un restant <= tolérance
//
// annule est terminal et n'est jamais recalculé.
func ComputeStatut(d *entity.Dispatch, livraisons []*entity.Livraison) string {
	if d.Statut == entity.DispatchStatutAnnule {
		return entity.DispatchStatutAnnule
	}

	livreClient := LivreParType(livraisons, entity.LivraisonTypeClient)
	livreStock := LivreParType(livraisons, entity.LivraisonTypeStock)

	restantClient := d.QuantiteClient.Sub(livreClient)
	restantStock := d.QuantiteStock.Sub(livreStock)
	if restantClient.LessThanOrEqual(Tolerance) && restantStock.LessThanOrEqual(Tolerance) {
		return entity.DispatchStatutComplete
	}

	for _, l := range livraisons {
		if !l.Annulee() {
			return entity.DispatchStatutEnCours
		}
	}
	return entity.DispatchStatutPlanifie
}
