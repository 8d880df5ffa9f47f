package ingest

// formatExample is the workout shape the parser expects.
const formatExample = `{
  "Push Workout": {
    "Bench Press": {
      "sets": "4",
      "reps": "6-8"
    },
    "Overhead Press": {
      "sets": "3",
      "reps": "8-10"
    }
  }
}`

// FormatPrompt returns the hint users paste into an AI chat so the generated
// workout comes back in a format ParseAndValidate accepts.
func FormatPrompt() string {
	return "Now give me this in a JSON format:\n\n" +
		"Generate a workout in this exact JSON format:\n\n" + formatExample
}
