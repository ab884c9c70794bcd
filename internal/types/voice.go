package types

// DefaultVoiceProvider is the speech vendor every preset currently maps to.
const DefaultVoiceProvider = "minimax"

// voicePresetToProviderID maps user-facing preset names onto the vendor's
// voice ids. Unknown presets pass through unchanged so newly added vendor
// voices work without a deploy.
var voicePresetToProviderID = map[string]string{
  "Wise_Woman":         "Wise_Woman",
  "Friendly_Person":    "Friendly_Person",
  "Inspirational_girl": "Inspirational_girl",
  "Deep_Voice_Man":     "Deep_Voice_Man",
  "Calm_Woman":         "Calm_Woman",
  "Casual_Guy":         "Casual_Guy",
  "Lively_Girl":        "Lively_Girl",
  "Patient_Man":        "Patient_Man",
  "Young_Knight":       "Young_Knight",
  "Determined_Man":     "Determined_Man",
  "Lovely_Girl":        "Lovely_Girl",
  "Decent_Boy":         "Decent_Boy",
  "Imposing_Manner":    "Imposing_Manner",
  "Elegant_Man":        "Elegant_Man",
  "Abbess":             "Abbess",
  "Sweet_Girl_2":       "Sweet_Girl_2",
  "Exuberant_Girl":     "Exuberant_Girl",
}

func ResolveVoiceProviderID(voicePreset string) string {
  if id, ok := voicePresetToProviderID[voicePreset]; ok {
    return id
  }
  return voicePreset
}
