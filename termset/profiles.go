package termset

const (
	ProfileEnglish                  = "en"
	ProfileEnglishClinical          = "en_clinical"
	ProfileEnglishClinicalSensitive = "en_clinical_sensitive"
)

// Profiles returns the names of the built-in profiles.
func Profiles() []string {
	return []string{ProfileEnglish, ProfileEnglishClinical, ProfileEnglishClinicalSensitive}
}

// profilePatterns builds a fresh copy of a built-in profile on every call.
func profilePatterns(name string) (Patterns, bool) {
	switch name {
	case ProfileEnglish:
		return Patterns{
			Pseudo:      getEnPseudo(),
			Preceding:   getEnPreceding(),
			Following:   getEnFollowing(),
			Termination: getEnTermination(),
		}, true
	case ProfileEnglishClinical:
		return Patterns{
			Pseudo:      getClinicalPseudo(),
			Preceding:   getClinicalPreceding(),
			Following:   getClinicalFollowing(),
			Termination: getClinicalTermination(),
		}, true
	case ProfileEnglishClinicalSensitive:
		return Patterns{
			Pseudo:      getClinicalPseudo(),
			Preceding:   getClinicalSensitivePreceding(),
			Following:   getClinicalFollowing(),
			Termination: getClinicalTermination(),
		}, true
	}
	return nil, false
}

func getEnPseudo() []string {
	return []string{
		"no further",
		"not able to be",
		"not certain if",
		"not certain whether",
		"not necessarily",
		"without any further",
		"without difficulty",
		"without further",
		"might not",
		"not only",
		"no increase",
		"no significant change",
		"no change",
		"no definite change",
		"not extend",
		"not cause",
	}
}

func getEnPreceding() []string {
	return []string{
		"absence of",
		"declined",
		"denied",
		"denies",
		"denying",
		"no sign of",
		"no signs of",
		"not",
		"not demonstrate",
		"symptoms atypical",
		"doubt",
		"negative for",
		"no",
		"versus",
		"without",
		"doesn't",
		"doesnt",
		"don't",
		"dont",
		"didn't",
		"didnt",
		"wasn't",
		"wasnt",
		"weren't",
		"werent",
		"isn't",
		"isnt",
		"aren't",
		"arent",
		"cannot",
		"can't",
		"cant",
		"couldn't",
		"couldnt",
		"never",
	}
}

func getEnFollowing() []string {
	return []string{
		"declined",
		"unlikely",
		"was not",
		"were not",
		"wasn't",
		"wasnt",
		"weren't",
		"werent",
	}
}

func getEnTermination() []string {
	return []string{
		"although",
		"apart from",
		"as there are",
		"aside from",
		"but",
		"except",
		"however",
		"involving",
		"nevertheless",
		"still",
		"though",
		"which",
		"yet",
	}
}

func getClinicalPseudo() []string {
	return append(getEnPseudo(),
		"gram negative",
		"not rule out",
		"not ruled out",
		"not been ruled out",
		"not drain",
		"no suspicious change",
		"no interval change",
		"no significant interval change",
	)
}

func getClinicalPreceding() []string {
	return append(getEnPreceding(),
		"patient was not",
		"without indication of",
		"without sign of",
		"without signs of",
		"without any reactions or signs of",
		"no complaints of",
		"no evidence of",
		"no cause of",
		"evaluate for",
		"fails to reveal",
		"free of",
		"never developed",
		"never had",
		"did not exhibit",
		"rules out",
		"rule out",
		"rule him out",
		"rule her out",
		"rule patient out",
		"rule the patient out",
		"ruled out",
		"ruled him out",
		"ruled her out",
		"ruled patient out",
		"ruled the patient out",
		"r/o",
		"ro",
	)
}

func getClinicalFollowing() []string {
	return append(getEnFollowing(),
		"was ruled out",
		"were ruled out",
		"free",
	)
}

func getClinicalTermination() []string {
	return append(getEnTermination(),
		"cause for",
		"cause of",
		"causes for",
		"causes of",
		"etiology for",
		"etiology of",
		"origin for",
		"origin of",
		"origins for",
		"origins of",
		"other possibilities of",
		"reason for",
		"reason of",
		"reasons for",
		"reasons of",
		"secondary to",
		"source for",
		"source of",
		"sources for",
		"sources of",
		"trigger event for",
	)
}

func getClinicalSensitivePreceding() []string {
	return append(getClinicalPreceding(),
		"concern for",
		"supposed",
		"which causes",
		"leads to",
		"h/o",
		"history of",
		"instead of",
		"if you experience",
		"if you get",
		"teaching the patient",
		"taught the patient",
		"teach the patient",
		"educated the patient",
		"educate the patient",
		"educating the patient",
		"monitored for",
		"monitor for",
		"test for",
		"tested for",
	)
}
