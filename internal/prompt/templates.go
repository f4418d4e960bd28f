package prompt

// Kind selects a prompt template
type Kind string

const (
	KindMagi       Kind = "magi"
	KindPrediction Kind = "prediction"
	KindAnalysis   Kind = "analysis"
	KindCustom     Kind = "custom"
)

// DefaultSystemPrompt is sent as the system message to chat-style providers
const DefaultSystemPrompt = "You are an expert boat race handicapper."

const magiTemplate = `You are an expert boat race handicapper. Analyse the race below and make one prediction.

[Race]
Venue: {{.Venue}}
Date: {{.Date}}
Race: R{{.RaceNumber}} {{.Title}}

[Entrants]
{{.Entrants}}

[Answer format]
Answer in exactly this format:

■ PICK (trifecta)
[exactly one pick in N-N-N form, e.g. 1-3-4]

■ CONFIDENCE
[one of: high / medium / low]

■ ANALYSIS
[the reasoning in at most 200 characters]
`

const predictionTemplate = `You are an expert boat race handicapper. Analyse the race card below and give a prediction.

[Race]
Venue: {{.Venue}}
Date: {{.Date}}
Race: R{{.RaceNumber}}
{{.Title}}

[Entrants]
{{.Entrants}}

[Requests]
1. Describe each boat's strengths and weaknesses
2. Predict how the start and first turn will unfold
3. Recommend three trifecta picks
4. Suggest one long-shot pick if there is one
5. Briefly explain the reasoning

This is reference information only; no outcome is guaranteed.
`

const analysisTemplate = `You are a boat race data analyst. Analyse the race card below in detail.

[Race]
Venue: {{.Venue}}
Date: {{.Date}}
Race: R{{.RaceNumber}}

[Entrants]
{{.Entrants}}

[Analysis items]
1. Racer ability (tier, win rates, record)
2. Equipment (motor and boat 2-place rates)
3. Course (lane advantage, expected entry)
4. Start (average start timing)
5. Overall ranking of every boat

Base the analysis on the data only.
`

var defaultTemplates = map[Kind]string{
	KindMagi:       magiTemplate,
	KindPrediction: predictionTemplate,
	KindAnalysis:   analysisTemplate,
}
