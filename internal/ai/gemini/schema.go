package gemini

import "google.golang.org/genai"

// MatchedJobsSchema describes the {"matchedJobs": [{"id", "title"}]} reply.
func MatchedJobsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"matchedJobs": {
				Type:        genai.TypeArray,
				Description: "A list of job titles from the available list that are a good match for the resume.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id": {
							Type:        genai.TypeInteger,
							Description: "The unique identifier for the job title.",
						},
						"title": {
							Type:        genai.TypeString,
							Description: "The name of the job title.",
						},
					},
					Required: []string{"id", "title"},
				},
			},
		},
		Required: []string{"matchedJobs"},
	}
}
