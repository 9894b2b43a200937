// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pmc

import "strings"

// Topic maps a display keyword to the title fragments that imply it.
type Topic struct {
	Keyword  string   `json:"keyword" yaml:"keyword"`
	Patterns []string `json:"patterns" yaml:"patterns"`
}

// DefaultTopics returns the space-biology topic table in display order.
func DefaultTopics() []Topic {
	return []Topic{
		{"Microgravity", []string{"microgravity", "weightless", "zero gravity", "0-g"}},
		{"Radiation", []string{"radiation", "cosmic ray", "solar particle"}},
		{"Isolation", []string{"isolation", "confined", "confinement"}},
		{"Space Medicine", []string{"space medicine", "astronaut health", "spaceflight"}},
		{"Plants", []string{"plant", "vegetation", "crop", "photosynthesis"}},
		{"Humans", []string{"human", "astronaut", "crew"}},
		{"Animals", []string{"animal", "mouse", "mice", "rat", "rodent"}},
		{"Microbes", []string{"microbe", "bacteria", "microbial", "pathogen"}},
		{"Cells", []string{"cell", "cellular"}},
		{"Genetics", []string{"gene", "genetic", "dna", "rna", "genome"}},
		{"Muscle Atrophy", []string{"muscle", "atrophy", "skeletal"}},
		{"Bone Loss", []string{"bone", "osteo", "skeletal"}},
		{"Immune System", []string{"immune", "immunity", "immunological"}},
		{"Cardiovascular", []string{"cardiovascular", "cardiac", "heart"}},
		{"Neurological", []string{"neuro", "brain", "cognitive"}},
		{"ISS", []string{"iss", "international space station", "space station"}},
		{"Moon", []string{"moon", "lunar"}},
		{"Mars", []string{"mars", "martian"}},
		{"Long-Duration", []string{"long-duration", "long duration", "extended mission"}},
	}
}

// ExtractKeywords returns the keywords of every topic with a pattern
// occurring in title, in table order.
func ExtractKeywords(title string, topics []Topic) []string {
	t := strings.ToLower(title)
	var out []string
	for _, topic := range topics {
		for _, p := range topic.Patterns {
			if p != "" && strings.Contains(t, strings.ToLower(p)) {
				out = append(out, topic.Keyword)
				break
			}
		}
	}
	return out
}
