package keywords

import "time"

// Headers returns the priority header vocabularies. Header values are mostly
// locale independent, so this is merged into every dictionary.
func Headers() *Dictionary {
	return &Dictionary{
		PriorityHeaders: map[string]map[string]int{
			// X-Priority: 1 (Highest) .. 5 (Lowest)
			"x-priority": {
				"1": 1, "2": 1, "3": 0, "4": -1, "5": -1,
				"highest": 1, "high": 1, "urgent": 2,
				"normal": 0, "low": -1, "lowest": -1,
			},
			"x-msmail-priority": {"high": 1, "normal": 0, "low": -1},
			"importance":        {"high": 1, "normal": 0, "low": -1},
			"x-importance":      {"high": 1, "normal": 0, "low": -1},
			// RFC 2156
			"priority": {"urgent": 2, "normal": 0, "non-urgent": -1},
		},
	}
}

// English returns the built-in "en" dictionary.
func English() *Dictionary {
	return &Dictionary{
		Locales: []string{"en"},
		Priority: map[string]int{
			"urgent":                2,
			"asap":                  2,
			"as soon as possible":   2,
			"immediately":           2,
			"emergency":             2,
			"critical":              2,
			"important":             1,
			"priority":              1,
			"high priority":         1,
			"action required":       1,
			"time sensitive":        1,
			"time-sensitive":        1,
			"low priority":          -1,
			"not important":         -1,
			"not a priority":        -1,
			"not urgent":            -1,
			"non-urgent":            -1,
			"no rush":               -1,
			"no hurry":              -1,
			"whenever you can":      -1,
			"when you get a chance": -1,
			"fyi":                   -1,
		},
		PendingStrong: []string{
			"action required", "action needed", "action item", "action items",
			"please review", "please confirm", "please approve", "please sign",
			"please send", "please complete", "please submit", "please respond",
			"please reply", "please update", "please fill",
			"awaiting your", "waiting for your", "waiting on you",
			"need your", "needs your", "requires your", "your approval",
			"to-do", "to do list", "todo list", "open task", "follow up", "follow-up",
			"reminder", "pending", "outstanding", "overdue",
			"unresolved", "still open", "not yet resolved",
		},
		PendingWeak: []string{
			"please", "let me know", "can you", "could you", "would you",
			"question", "questions", "thoughts", "feedback", "any update",
			"get back to me", "when you can",
		},
		Neutral: []string{
			"no action required", "no action needed", "no action is required",
			"no reply needed", "no need to reply", "no response needed",
			"do not reply", "please do not reply", "for your information",
			"fyi", "has been resolved", "is resolved", "was resolved",
			"has been completed", "already done",
		},
		Deadline: []string{
			"deadline", "due", "due date", "due by", "by", "before",
			"no later than", "until", "expires", "expiring", "expiry",
			"submit by", "needed by", "required by",
		},
		Months: map[string]time.Month{
			"january": time.January, "jan": time.January,
			"february": time.February, "feb": time.February,
			"march": time.March, "mar": time.March,
			"april": time.April, "apr": time.April,
			"may":  time.May,
			"june": time.June, "jun": time.June,
			"july": time.July, "jul": time.July,
			"august": time.August, "aug": time.August,
			"september": time.September, "sep": time.September, "sept": time.September,
			"october": time.October, "oct": time.October,
			"november": time.November, "nov": time.November,
			"december": time.December, "dec": time.December,
		},
		Weekdays: map[string]time.Weekday{
			"monday": time.Monday, "mon": time.Monday,
			"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
			"wednesday": time.Wednesday, "wed": time.Wednesday,
			"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
			"friday": time.Friday, "fri": time.Friday,
			"saturday": time.Saturday, "sat": time.Saturday,
			"sunday": time.Sunday, "sun": time.Sunday,
		},
		WeekdayPrefixes: []string{
			"by", "before", "on", "until", "till", "next", "this", "coming", "due",
		},
		RelativeDays: map[string]int{
			"today": 0, "tonight": 0, "eod": 0, "end of day": 0, "end of the day": 0,
			"cob": 0, "close of business": 0,
			"tomorrow": 1, "day after tomorrow": 2,
		},
		InPrefixes:    []string{"in", "within", "in the next"},
		DayUnits:      []string{"day", "days"},
		BusinessUnits: []string{"business day", "business days", "working day", "working days"},
		WeekUnits:     []string{"week", "weeks"},
		NumberWords: map[string]int{
			"a": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
			"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		},
		EndOfWeek:  []string{"end of the week", "end of week", "end of this week", "eow"},
		EndOfMonth: []string{"end of the month", "end of month", "end of this month", "eom", "month end", "month-end"},
		EndOfYear:  []string{"end of the year", "end of year", "end of this year", "eoy", "year end", "year-end"},
	}
}

// Spanish returns the built-in "es" dictionary. Terms are written without
// accents; input text is folded before matching.
func Spanish() *Dictionary {
	return &Dictionary{
		Locales: []string{"es"},
		Priority: map[string]int{
			"urgente":           2,
			"urgentemente":      2,
			"lo antes posible":  2,
			"cuanto antes":      2,
			"inmediato":         2,
			"inmediatamente":    2,
			"critico":           2,
			"importante":        1,
			"prioridad":         1,
			"alta prioridad":    1,
			"prioritario":       1,
			"accion requerida":  1,
			"baja prioridad":    -1,
			"no es importante":  -1,
			"no es prioritario": -1,
			"no es prioridad":   -1,
			"no es urgente":     -1,
			"sin prisa":         -1,
			"cuando puedas":     -1,
			"cuando pueda":      -1,
		},
		PendingStrong: []string{
			"tarea", "tareas", "pendiente", "pendientes", "se requiere",
			"favor de", "accion requerida", "recordatorio", "seguimiento",
			"necesito que", "quedo a la espera", "en espera de tu",
			"en espera de su", "por favor revisa", "por favor revisar",
			"por favor confirma", "por favor confirmar", "por favor enviar",
			"por favor envia", "sin resolver",
		},
		PendingWeak: []string{
			"por favor", "accion", "avisame", "me avisas", "me confirmas",
			"puedes", "podrias", "podria", "pregunta", "consulta", "comentarios",
		},
		Neutral: []string{
			"no requiere accion", "no se requiere accion", "no es necesario responder",
			"no responder", "no responda", "solo para informacion",
			"para tu informacion", "para su informacion", "ya esta resuelto",
			"ha sido resuelto", "ya fue resuelto",
		},
		Deadline: []string{
			"vencimiento", "vence", "antes del", "antes de", "fecha limite",
			"plazo", "hasta el", "a mas tardar", "para el", "entrega",
		},
		Months: map[string]time.Month{
			"enero": time.January, "ene": time.January,
			"febrero": time.February,
			"marzo":   time.March,
			"abril":   time.April, "abr": time.April,
			"mayo":   time.May,
			"junio":  time.June,
			"julio":  time.July,
			"agosto": time.August, "ago": time.August,
			"septiembre": time.September, "setiembre": time.September,
			"octubre":   time.October,
			"noviembre": time.November,
			"diciembre": time.December, "dic": time.December,
		},
		Weekdays: map[string]time.Weekday{
			"lunes":     time.Monday,
			"martes":    time.Tuesday,
			"miercoles": time.Wednesday,
			"jueves":    time.Thursday,
			"viernes":   time.Friday,
			"sabado":    time.Saturday,
			"domingo":   time.Sunday,
		},
		WeekdayPrefixes: []string{
			"el", "para el", "antes del", "hasta el", "el proximo", "este", "proximo",
		},
		RelativeDays: map[string]int{
			"hoy": 0, "fin del dia": 0, "final del dia": 0,
			"manana": 1, "pasado manana": 2,
		},
		InPrefixes:    []string{"en", "dentro de", "en los proximos", "en un plazo de"},
		DayUnits:      []string{"dia", "dias"},
		BusinessUnits: []string{"dia habil", "dias habiles", "dia laborable", "dias laborables"},
		WeekUnits:     []string{"semana", "semanas"},
		NumberWords: map[string]int{
			"un": 1, "una": 1, "uno": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
			"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
		},
		EndOfWeek:  []string{"final de la semana", "fin de la semana", "finales de la semana"},
		EndOfMonth: []string{"fin de mes", "final de mes", "finales de mes", "fin del mes", "final del mes"},
		EndOfYear:  []string{"fin de ano", "final de ano", "fin del ano", "finales de ano", "final del ano"},

		// "manana" is also "morning".
		NotDates: []string{"esta manana", "la manana", "una manana", "cada manana"},
	}
}
