package backend

import (
	"fmt"
	"strings"
)

// systemPrompt is the shared instruction set for the generative adapters.
const systemPrompt = `You are a warm, supportive emotional wellness companion.
You listen without judgment, validate feelings, and offer gentle, practical suggestions.
You are not a therapist and you never diagnose, prescribe, or give medical advice.
Keep responses to 2-4 sentences. Be specific to what the person shared.
Never minimize feelings or tell someone to "just" do anything.`

// buildUserPrompt assembles the generation prompt from the classified
// request. The detected emotion and intensity steer the model toward an
// appropriate register without leaking raw scores to the user.
func buildUserPrompt(req *Request) string {
	var b strings.Builder

	if req.Emotion != nil {
		fmt.Fprintf(&b, "The person appears to be feeling %s (%s intensity, confidence %.2f).\n",
			req.Emotion.Primary, req.Sentiment.Intensity, req.Emotion.Confidence)
	}
	if req.Context.TimeOfDay != "" {
		fmt.Fprintf(&b, "It is currently %s for them.\n", req.Context.TimeOfDay)
	}
	if req.Context.PriorSessions > 0 {
		fmt.Fprintf(&b, "They have checked in %d times before.\n", req.Context.PriorSessions)
	}
	fmt.Fprintf(&b, "\nThey wrote:\n%s\n\nRespond with warmth and validation.", req.Text)
	return b.String()
}
