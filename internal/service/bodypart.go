package service

import "strings"

// bodyPartSynonyms maps the coarse groups users search by to the muscle names
// used in the catalog.
var bodyPartSynonyms = map[string][]string{
	"chest":     {"chest", "pectorals"},
	"legs":      {"quadriceps", "hamstrings", "calves", "glutes", "adductors", "abductors"},
	"back":      {"lats", "middle back", "lower back", "traps"},
	"arms":      {"biceps", "triceps", "forearms"},
	"shoulders": {"shoulders"},
	"core":      {"abdominals"},
	"abs":       {"abdominals"},
}

// ExpandBodyPart returns the catalog body parts a search term stands for.
// Terms that are not a synonym group expand to themselves.
func ExpandBodyPart(part string) []string {
	key := strings.ToLower(strings.TrimSpace(part))
	if key == "" {
		return nil
	}
	if parts, ok := bodyPartSynonyms[key]; ok {
		return append([]string(nil), parts...)
	}
	return []string{key}
}

func isBodyPartGroup(term string) bool {
	_, ok := bodyPartSynonyms[strings.ToLower(strings.TrimSpace(term))]
	return ok
}
