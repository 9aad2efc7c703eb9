// File: services/conversation/guards.go
package conversation

import (
	"regexp"
	"strings"

	"hestia/models"
)

// Cancellation is matched before NLU classification on purpose: the guest
// must be able to back out even when the classifier is down.
var cancelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcancel(a|ar|alo|arlo|e|elo)\b`),
	regexp.MustCompile(`(?i)\banul(a|ar|alo|arlo|e|elo)\b`),
	regexp.MustCompile(`(?i)\bolv[ií]d(alo|elo|ala|ela)\b`),
	regexp.MustCompile(`(?i)ya no (lo |la )?(necesito|quiero)`),
	regexp.MustCompile(`(?i)\bd[ée]j(alo|elo)\b`),
	regexp.MustCompile(`(?i)no quiero (nada|el ticket|la solicitud)`),
}

func matchesCancel(text string) bool {
	for _, p := range cancelPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

var menuKeywords = map[string]bool{
	"menu":   true,
	"menú":   true,
	"inicio": true,
	"start":  true,
}

func matchesMenu(text string) bool {
	return menuKeywords[strings.ToLower(strings.TrimSpace(text))]
}

var yesTokens = map[string]bool{
	"si": true, "sí": true, "sip": true, "ok": true, "okay": true,
	"vale": true, "dale": true, "de acuerdo": true, "claro": true,
	"claro que si": true, "claro que sí": true, "confirmo": true,
	"por supuesto": true, "yes": true, "listo": true, "bueno": true,
	"si por favor": true, "sí por favor": true,
}

var noTokens = map[string]bool{
	"no": true, "nop": true, "nope": true, "para nada": true,
	"negativo": true, "mejor no": true, "no gracias": true,
	"no por ahora": true,
}

// matchYesNo normalizes the message and checks it against the closed yes/no
// token sets. The second return is false when the message is neither, so the
// caller can fall back to normal routing instead of forcing a dead-end
// confirmation loop.
func matchYesNo(text string) (yes bool, ok bool) {
	t := normalizeAnswer(text)
	if yesTokens[t] {
		return true, true
	}
	if noTokens[t] {
		return false, true
	}
	return false, false
}

// normalizeAnswer trims, lowercases and strips trailing punctuation.
func normalizeAnswer(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".,;:!¡?¿ ")
	return t
}

// foldAccents maps Spanish accented vowels (and ñ/ü) to their plain forms so
// keyword comparisons survive inconsistent typing.
var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"ä", "a", "ë", "e", "ï", "i", "ö", "o", "ü", "u",
	"ñ", "n",
)

func fold(text string) string {
	return accentFolder.Replace(strings.ToLower(text))
}

// Generic problem reports that carry no actionable detail. A draft whose
// detail folds to one of these is routed through DETAIL_CLARIFICATION
// before identity collection.
var vagueDetails = map[string]bool{
	"":                                    true,
	"tengo un problema":                   true,
	"hay un problema":                     true,
	"un problema":                         true,
	"problema":                            true,
	"necesito ayuda":                      true,
	"ayuda":                               true,
	"sin detalles":                        true,
	"no funciona":                         true,
	"no se":                               true,
	"tengo un problema en mi habitacion":  true,
	"hay un problema en mi habitacion":    true,
	"tengo un problema con mi habitacion": true,
	"algo no funciona":                    true,
	"necesito algo":                       true,
}

func isVagueDetail(detail string) bool {
	d := strings.TrimRight(fold(strings.TrimSpace(detail)), ".,;:!¡?¿ ")
	return vagueDetails[d]
}

// Area-clarification menu parsing: a digit 1-4 or a department keyword.
var (
	mantencionWords   = regexp.MustCompile(`(?i)\b(mantencion|mantención|mantenimiento|tecnico|técnico)\b`)
	housekeepingWords = regexp.MustCompile(`(?i)\b(housekeeping|limpieza|aseo|toallas|sabanas|sábanas|amenities)\b`)
	recepcionWords    = regexp.MustCompile(`(?i)\b(recepcion|recepción|pago|reserva|factura|check.?(in|out))\b`)
	gerenciaWords     = regexp.MustCompile(`(?i)\b(gerencia|queja|reclamo|otro|otra)\b`)
)

// matchAreaChoice resolves an AREA_CLARIFICATION reply to a department.
// Returns ok=false when the reply is neither a menu digit nor a recognizable
// keyword, in which case the caller re-prompts.
func matchAreaChoice(text string) (models.TicketArea, bool) {
	t := strings.TrimSpace(text)
	switch t {
	case "1":
		return models.AreaMantencion, true
	case "2":
		return models.AreaHousekeeping, true
	case "3":
		return models.AreaRecepcion, true
	case "4":
		return models.AreaGerencia, true
	}
	switch {
	case mantencionWords.MatchString(t):
		return models.AreaMantencion, true
	case housekeepingWords.MatchString(t):
		return models.AreaHousekeeping, true
	case recepcionWords.MatchString(t):
		return models.AreaRecepcion, true
	case gerenciaWords.MatchString(t):
		return models.AreaGerencia, true
	}
	return "", false
}
