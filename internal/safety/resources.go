package safety

import "github.com/havenlabs/solace/internal/lexicon"

// Resource is one support contact surfaced to the user.
type Resource struct {
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	Description  string `json:"description"`
	Availability string `json:"availability,omitempty"`
}

var crisisResources = []Resource{
	{
		Name:         "988 Suicide & Crisis Lifeline",
		Contact:      "Call or text 988",
		Description:  "Free, confidential support for people in distress.",
		Availability: "24/7",
	},
	{
		Name:         "Crisis Text Line",
		Contact:      "Text HOME to 741741",
		Description:  "Text-based crisis counseling with a trained counselor.",
		Availability: "24/7",
	},
	{
		Name:         "Emergency Services",
		Contact:      "Call 911",
		Description:  "If you are in immediate danger, call emergency services now.",
		Availability: "24/7",
	},
	{
		Name:        "International Association for Suicide Prevention",
		Contact:     "https://www.iasp.info/resources/Crisis_Centres/",
		Description: "Directory of crisis centers outside the United States.",
	},
}

var elevatedResources = []Resource{
	{
		Name:         "988 Suicide & Crisis Lifeline",
		Contact:      "Call or text 988",
		Description:  "Free, confidential support for people in distress.",
		Availability: "24/7",
	},
	{
		Name:         "SAMHSA National Helpline",
		Contact:      "1-800-662-4357",
		Description:  "Treatment referral and information service for mental health.",
		Availability: "24/7",
	},
}

var categoryResources = map[lexicon.Category][]Resource{
	lexicon.Anxious: {
		{
			Name:        "Anxiety and Depression Association of America",
			Contact:     "https://adaa.org",
			Description: "Education and therapist directory for anxiety disorders.",
		},
	},
	lexicon.Stressed: {
		{
			Name:        "American Institute of Stress",
			Contact:     "https://www.stress.org",
			Description: "Stress management techniques and research.",
		},
	},
	lexicon.Overwhelmed: {
		{
			Name:        "Mental Health America",
			Contact:     "https://mhanational.org",
			Description: "Screening tools and local support program finder.",
		},
	},
	lexicon.Sad: {
		{
			Name:        "National Alliance on Mental Illness",
			Contact:     "1-800-950-6264",
			Description: "Peer support and information on depression.",
		},
	},
}

// ResourcesFor returns the support resources to attach to a response.
// Crisis severity always returns the full crisis set. Elevated severity
// returns general helplines plus any category-specific entries. Normal
// severity returns nothing.
func ResourcesFor(sev Severity, cat lexicon.Category) []Resource {
	switch sev {
	case SeverityCrisis:
		return append([]Resource(nil), crisisResources...)
	case SeverityElevated:
		out := append([]Resource(nil), elevatedResources...)
		out = append(out, categoryResources[cat]...)
		return out
	default:
		return nil
	}
}
