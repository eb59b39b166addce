package catalog

// Labels as printed on the paper dossier, for fields whose key differs
// noticeably from the printed wording.
var labels = map[string]string{
	"numero_etudiant":       "N° Etudiant",
	"numero_ines":           "N° INES",
	"nom_naissance":         "Nom de naissance",
	"prenom_1":              "Prénom",
	"date_naissance":        "Date de naissance",
	"situation_familiale":   "Situation familiale",
	"departement_naissance": "Département de naissance",
	"pays_naissance":        "Pays de naissance",
	"nationalite":           "Nationalité",
	"premiere_inscription_universite_etablissement": "Etablissement première inscription université",
	"bac_serie":                     "Série baccalauréat",
	"bac_departement":               "Département baccalauréat",
	"csp_etudiant_code":             "Code CSP étudiant",
	"csp_parent_1":                  "Code CSP parent 1",
	"csp_parent_2":                  "Code CSP parent 2",
	"dernier_diplome_code":          "Code diplôme",
	"dernier_diplome_etablissement": "Etablissement dernier diplôme",
	"diplome_postule_code_cpge":     "Code CPGE",
}

// Label returns the printed label for a field, falling back to its key.
func Label(name string) string {
	if l, ok := labels[name]; ok {
		return l
	}
	return name
}
