package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type OperationType string

const (
	Fertilisation OperationType = "Fertilisation"
	Traitement    OperationType = "Traitement"
	Irrigation    OperationType = "Irrigation"
	Desherbage    OperationType = "Désherbage"
	Recolte       OperationType = "Récolte"
)

var OperationTypes = []OperationType{Fertilisation, Traitement, Irrigation, Desherbage, Recolte}

func (t OperationType) Valid() bool {
	for _, known := range OperationTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Operation struct {
	ID             int           `json:"id"`
	TypeOperation  OperationType `json:"type_operation"`
	DateOperation  string        `json:"date_operation"`
	ProduitUtilise string        `json:"produit_utilise"`
	Dose           Number        `json:"dose"`
	Unite          string        `json:"unite"`
	Technique      string        `json:"technique"`
	Equipement     string        `json:"equipement"`
	Remarques      string        `json:"remarques"`
	CultureID      int           `json:"culture_id"`
	CultureName    string        `json:"culture_name"`
	Cout           Number        `json:"cout,omitempty"`
}

const DefaultUnit = "kg/ha"

var Units = []string{DefaultUnit, "L/ha", "t/ha", "mm", "unité"}

// OperationInput is the body of POST /api/cultures/{id}/operations.
type OperationInput struct {
	TypeOperation  OperationType `json:"type_operation" form:"type_operation"`
	DateOperation  string        `json:"date_operation" form:"date_operation"`
	ProduitUtilise string        `json:"produit_utilise" form:"produit_utilise"`
	Dose           string        `json:"dose" form:"dose"`
	Unite          string        `json:"unite" form:"unite"`
	Technique      string        `json:"technique" form:"technique"`
	Equipement     string        `json:"equipement" form:"equipement"`
	Remarques      string        `json:"remarques" form:"remarques"`
}

// OperationFinance is the cost breakdown attached to one operation. Values are
// sent as typed; the total is computed for display only.
type OperationFinance struct {
	CoutProduit    string `json:"cout_produit" form:"cout_produit"`
	CoutMainOeuvre string `json:"cout_main_oeuvre" form:"cout_main_oeuvre"`
	CoutEquipement string `json:"cout_equipement" form:"cout_equipement"`
	AutresCouts    string `json:"autres_couts" form:"autres_couts"`
}

// Total sums the four costs with two decimals. Empty or non-numeric values
// count as zero.
func (f OperationFinance) Total() string {
	return TotalCost(f.CoutProduit, f.CoutMainOeuvre, f.CoutEquipement, f.AutresCouts)
}

func TotalCost(costs ...string) string {
	var total float64
	for _, c := range costs {
		total += parseCost(c)
	}
	return fmt.Sprintf("%.2f", total)
}

func parseCost(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Harvest is the body of POST /api/cultures/{id}/recoltes. Fields are kept as
// the strings the user typed.
type Harvest struct {
	CultureID   string `json:"culture_id" form:"culture_id"`
	DateRecolte string `json:"date_recolte" form:"date_recolte"`
	Quantite    string `json:"quantite" form:"quantite"`
	PrixVente   string `json:"prix_vente" form:"prix_vente"`
	Benefice    string `json:"benefice" form:"benefice"`
	Etat        string `json:"etat" form:"etat"`
}

type FileType string

const (
	FilePDF   FileType = "pdf"
	FileExcel FileType = "excel"
	FileCSV   FileType = "csv"
)

var FileTypes = []FileType{FilePDF, FileExcel, FileCSV}

func ParseFileType(s string) (FileType, bool) {
	ft := FileType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FileTypes {
		if ft == known {
			return ft, true
		}
	}
	return "", false
}

// Extension returns the file suffix used when the API does not name the file.
func (t FileType) Extension() string {
	switch t {
	case FileExcel:
		return "xlsx"
	case FileCSV:
		return "csv"
	default:
		return "pdf"
	}
}

type ExportRequest struct {
	CultureID   string   `json:"-"`
	TypeFichier FileType `json:"type_fichier"`
}

// ProfileUpdate is the body of PUT /api/user. An empty password is omitted so
// the API keeps the current one.
type ProfileUpdate struct {
	Nom       string `json:"nom" form:"nom"`
	Prenom    string `json:"prenom" form:"prenom"`
	Email     string `json:"email" form:"email"`
	Telephone string `json:"telephone" form:"telephone"`
	Password  string `json:"password,omitempty" form:"password"`
}
