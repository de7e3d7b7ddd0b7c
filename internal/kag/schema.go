package kag

// entityFolderPaths maps an instrument type onto the corpus folders that can
// hold it. This is the schema constraint behind exact lookup.
var entityFolderPaths = map[EntityType][]string{
	EntitySupremeCourtCase:    {"Supreme Court/Decisions & Signed Resolutions", "Supreme Court/SC Case Index"},
	EntityRepublicAct:         {"Laws/Republic Acts"},
	EntityPresidentialDecree:  {"Laws/Presidential Decree"},
	EntityBatasPambansa:       {"Laws/Batas Pambansa"},
	EntityExecutiveOrder:      {"Executive Issuances/Executive Orders"},
	EntityAdministrativeOrder: {"Executive Issuances/Administrative Orders"},
	EntityConstitution:        {"Laws/Philippine Constitutions"},
	EntityLegalConcept:        {},
	EntityUnknown:             {},
}

// intentFolderPaths maps a detected intent onto the ordered folder list that
// concept search is allowed to scan.
var intentFolderPaths = map[Intent][]string{
	IntentFindCase: {"Supreme Court/Decisions & Signed Resolutions"},
	IntentFindLaw:  {"Laws/Republic Acts", "Laws/Presidential Decree", "Laws/Batas Pambansa"},
	IntentExplainConcept: {
		"Supreme Court/Decisions & Signed Resolutions",
		"Laws/Republic Acts",
		"References/Benchbooks",
	},
	IntentCompareLaws: {"Laws/Republic Acts", "Laws/Presidential Decree", "Laws/Batas Pambansa"},
	IntentDraft:       {"References/Revised Book of Judicial Forms", "References/Benchbooks"},
	IntentGeneralResearch: {
		"Supreme Court/Decisions & Signed Resolutions",
		"Laws/Republic Acts",
		"Laws/Presidential Decree",
		"Executive Issuances/Executive Orders",
	},
}
