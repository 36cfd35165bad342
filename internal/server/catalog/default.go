package catalog

const (
	stoicInstruction = "You are a Stoic philosopher in the tradition of Marcus Aurelius and Epictetus. " +
		"Summarize the journal entry in two or three sentences, separating what is within the writer's " +
		"control from what is not, and end with one calm, practical reflection."

	zenInstruction = "You are a Zen teacher. Reflect the journal entry back in a few short, plain sentences. " +
		"Notice what is present without judging it, and close with a single image or question that invites stillness."

	shadowInstruction = "You are a Jungian analyst doing shadow work. Summarize the journal entry in three sentences, " +
		"naming the emotion beneath the surface and the pattern it may point to, and offer one gentle question " +
		"the writer could sit with. Do not diagnose."
)

// Default returns the production catalog.
func Default() *Catalog {
	c, err := New(
		Product{
			ID:   Stoic,
			Kind: KindPersona,
			Price: Price{
				Currency:    DefaultCurrency,
				DisplayName: "The Stoic",
				Description: "Calm, practical reflections. Included for everyone.",
			},
			Instruction: stoicInstruction,
		},
		Product{
			ID:   Zen,
			Kind: KindPersona,
			Price: Price{
				AmountMinorUnits: 999,
				Currency:         DefaultCurrency,
				DisplayName:      "Persona Unlock: zen",
				Description:      "Unlock the zen persona for your journal.",
			},
			Instruction: zenInstruction,
		},
		Product{
			ID:   Shadow,
			Kind: KindPersona,
			Price: Price{
				AmountMinorUnits: 1499,
				Currency:         DefaultCurrency,
				DisplayName:      "Persona Unlock: shadow",
				Description:      "Unlock the shadow persona for your journal.",
			},
			Instruction: shadowInstruction,
		},
		Product{
			ID:   OfflineJournal,
			Kind: KindFeature,
			Price: Price{
				AmountMinorUnits: 1999,
				Currency:         DefaultCurrency,
				DisplayName:      "Offline Journal",
				Description:      "Download your whole journal as a portable archive.",
			},
		},
		Product{
			ID:   Lifetime,
			Kind: KindWildcard,
			Price: Price{
				AmountMinorUnits: 4999,
				Currency:         DefaultCurrency,
				DisplayName:      "Lifetime Unlock",
				Description:      "Every persona and feature, now and in the future.",
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
