package backend

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/sentiment"
)

// validationPhrases acknowledge the detected emotion.
var validationPhrases = map[lexicon.Category][]string{
	lexicon.Stressed: {
		"It sounds like you're carrying a lot right now.",
		"Feeling stressed is completely understandable given what you're going through.",
		"I can hear that you're feeling overwhelmed, and that's valid.",
		"It's natural to feel stressed when you have so much on your mind.",
		"Your feelings of stress are completely legitimate.",
	},
	lexicon.Anxious: {
		"Anxiety can feel really overwhelming, and I want you to know that's okay.",
		"It's understandable that you're feeling anxious about this.",
		"Feeling anxious is your mind's way of trying to protect you.",
		"I hear that you're feeling worried, and those feelings are valid.",
		"Anxiety is difficult to deal with, and you're not alone in feeling this way.",
	},
	lexicon.Sad: {
		"I'm sorry you're feeling this way right now.",
		"It's okay to feel sad. These emotions are part of being human.",
		"Your sadness is valid, and it's important to acknowledge these feelings.",
		"I can hear the pain in what you're sharing, and that takes courage.",
		"Feeling sad is a natural response to difficult situations.",
	},
	lexicon.Overwhelmed: {
		"It sounds like you have a lot on your plate right now.",
		"Feeling overwhelmed is a sign that you're dealing with a lot.",
		"It's completely normal to feel this way when facing so much at once.",
		"I can understand why you'd feel overwhelmed. That's a lot to handle.",
		"When everything feels like too much, those feelings are completely valid.",
	},
	lexicon.Angry: {
		"It sounds like something has really upset you, and that's understandable.",
		"Your anger is telling you that something important to you has been affected.",
		"Feeling angry can be really intense, and it's okay to feel this way.",
		"It makes sense that you'd feel frustrated about this situation.",
		"Your feelings of anger are valid and deserve to be acknowledged.",
	},
	lexicon.Excited: {
		"I can feel your excitement, and that's wonderful!",
		"It's great to hear such positive energy in your message.",
		"Your excitement is contagious. Thank you for sharing this joy!",
		"It sounds like something really good is happening for you.",
		"I love hearing when things are going well for you!",
	},
	lexicon.Positive: {
		"I'm so glad to hear you're feeling good.",
		"It's wonderful that you're in a positive headspace.",
		"Thank you for sharing these good feelings with me.",
		"It sounds like things are going well for you right now.",
		"Your positive energy is really uplifting.",
	},
	lexicon.Neutral: {
		"Thank you for sharing how you're feeling right now.",
		"I appreciate you taking the time to check in.",
		"It's perfectly okay to feel neutral sometimes.",
		"Thanks for letting me know where you're at today.",
		"I'm here to listen to whatever you're experiencing.",
	},
	lexicon.Confused: {
		"It's okay to feel uncertain. Confusion is a natural part of processing things.",
		"Not knowing how to feel or what to think is completely normal.",
		"It sounds like you're working through some complex feelings.",
		"Confusion often means we're in a period of growth and change.",
		"It's alright to not have everything figured out right now.",
	},
	lexicon.Grateful: {
		"It's beautiful to hear you expressing gratitude.",
		"Gratitude is such a powerful and positive emotion.",
		"I'm glad you're able to recognize the good things in your life.",
		"Thank you for sharing your appreciation. It's inspiring.",
		"Your gratitude is a lovely reminder of life's positive moments.",
	},
}

// supportPhrases follow the validation with encouragement.
var supportPhrases = map[lexicon.Category][]string{
	lexicon.Stressed: {
		"You're stronger than you know, even when stress feels overwhelming.",
		"Remember, it's okay to take things one step at a time.",
		"You don't have to handle everything perfectly. Just doing your best is enough.",
		"Stress is temporary, even when it doesn't feel like it.",
		"You've handled difficult situations before, and you can get through this too.",
	},
	lexicon.Anxious: {
		"You're not alone in feeling this way. Anxiety affects many people.",
		"Remember that anxious thoughts are just thoughts, not facts.",
		"You have the strength to get through this anxious moment.",
		"Anxiety is uncomfortable, but it won't last forever.",
		"Taking things moment by moment can help when anxiety feels overwhelming.",
	},
	lexicon.Sad: {
		"It's okay to sit with these feelings for a while. They're part of healing.",
		"Even in sadness, you're showing strength by reaching out.",
		"This difficult time will pass, even though it's hard to see right now.",
		"Your feelings matter, and so do you.",
		"Healing isn't linear. Be patient and gentle with yourself.",
	},
	lexicon.Overwhelmed: {
		"Remember, you don't have to solve everything at once.",
		"Breaking things down into smaller steps can make them more manageable.",
		"It's okay to ask for help when you're feeling overwhelmed.",
		"You're doing the best you can with what you have right now.",
		"Taking a step back and breathing can help clear your perspective.",
	},
	lexicon.Angry: {
		"Your anger is valid, and it's important to process these feelings safely.",
		"Sometimes anger is trying to tell us something important about our boundaries.",
		"It's okay to feel angry. The key is finding healthy ways to express it.",
		"Your feelings are legitimate, even if the situation is complicated.",
		"Taking time to cool down can help you think more clearly.",
	},
	lexicon.Excited: {
		"Your excitement is wonderful to witness!",
		"It's great to see you feeling so positive about something.",
		"Enjoy this feeling. You deserve to feel excited and happy.",
		"Your enthusiasm is inspiring and contagious.",
		"These positive moments are so important to celebrate.",
	},
	lexicon.Positive: {
		"I'm so happy to hear you're feeling good.",
		"These positive feelings are worth celebrating and holding onto.",
		"It's wonderful when life feels good and balanced.",
		"You deserve to feel this way. Soak it in!",
		"Positive moments like these can carry us through tougher times.",
	},
	lexicon.Neutral: {
		"Sometimes neutral is exactly where we need to be.",
		"There's peace in feeling balanced and steady.",
		"Neutral feelings can be a sign of stability and grounding.",
		"It's okay to just be where you are right now.",
		"Not every day needs to be intense. Calm is valuable too.",
	},
	lexicon.Confused: {
		"Confusion often precedes clarity. You're in a process of figuring things out.",
		"It's okay to sit with uncertainty while you process your thoughts.",
		"Sometimes the best thing to do is give yourself time to think.",
		"Your confusion shows that you're thoughtfully considering your situation.",
		"Not having all the answers right now is perfectly human.",
	},
	lexicon.Grateful: {
		"Gratitude has such a positive impact on our overall wellbeing.",
		"It's wonderful that you can see the good even during challenging times.",
		"Your appreciation for life's moments is truly special.",
		"Gratitude can be a powerful tool for maintaining perspective.",
		"Thank you for sharing your positive outlook. It's uplifting.",
	},
}

// copingSuggestions are short inline techniques appended to the response.
var copingSuggestions = map[lexicon.Category][]string{
	lexicon.Stressed: {
		"Try the 4-7-8 breathing technique: breathe in for 4, hold for 7, exhale for 8.",
		"Take a 5-minute walk, even if it's just around your room or outside.",
		"Write down your top 3 priorities and focus on just one at a time.",
		"Practice progressive muscle relaxation starting from your toes up to your head.",
		"Listen to calming music or nature sounds for a few minutes.",
	},
	lexicon.Anxious: {
		"Use the 5-4-3-2-1 grounding technique: name 5 things you see, 4 you hear, 3 you touch, 2 you smell, 1 you taste.",
		"Practice box breathing: breathe in for 4, hold for 4, out for 4, hold for 4.",
		"Try a brief mindfulness meditation focusing on your breath.",
		"Remind yourself: 'This feeling will pass, I am safe right now.'",
		"Engage in gentle movement like stretching or walking.",
	},
	lexicon.Sad: {
		"Write in a journal about what you're feeling. Let it all out on paper.",
		"Reach out to a trusted friend or family member for connection.",
		"Do one small thing that usually brings you comfort, like making tea or listening to favorite music.",
		"Practice self-compassion. Speak to yourself like you would a good friend.",
		"Consider watching something uplifting or looking at photos that make you smile.",
	},
	lexicon.Overwhelmed: {
		"Make a list of everything on your mind, then identify what's most urgent.",
		"Use the 'two-minute rule': if something takes less than two minutes, do it now.",
		"Break larger tasks into smaller, more manageable steps.",
		"Take 10 deep breaths and focus only on your breathing.",
		"Ask yourself: 'What's one thing I can let go of or delegate?'",
	},
	lexicon.Angry: {
		"Take 10 deep breaths before responding to whatever triggered your anger.",
		"Try physical exercise like jumping jacks or a quick walk to release tension.",
		"Write down your feelings without censoring yourself, then decide if you want to keep it.",
		"Count to 10 (or 100) before saying anything you might regret.",
		"Consider what boundary might need to be set or what you need to communicate.",
	},
	lexicon.Excited: {
		"Channel your excitement into planning your next steps toward your goal.",
		"Share your excitement with someone who will celebrate with you.",
		"Write down what's making you excited so you can remember this feeling later.",
		"Use this positive energy to tackle something you've been putting off.",
		"Take a moment to really savor and appreciate this wonderful feeling.",
	},
	lexicon.Positive: {
		"Take a moment to practice gratitude for what's going well.",
		"Consider how you can maintain this positive momentum.",
		"Share your good feelings with someone you care about.",
		"Use this positive energy to do something kind for yourself or others.",
		"Write down what's contributing to your positive mood.",
	},
	lexicon.Neutral: {
		"Check in with yourself: are there any needs that aren't being met?",
		"Consider doing a small activity that usually brings you joy.",
		"Practice mindfulness by noticing your surroundings without judgment.",
		"Take this calm moment to do some gentle self-reflection.",
		"Use this stable feeling to plan something you're looking forward to.",
	},
	lexicon.Confused: {
		"Write down your thoughts to help organize and clarify them.",
		"Talk through your confusion with someone you trust.",
		"Make a pros and cons list if you're trying to make a decision.",
		"Take some time away from the confusing situation to get perspective.",
		"Remember that it's okay not to have all the answers right now.",
	},
	lexicon.Grateful: {
		"Write down three specific things you're grateful for today.",
		"Consider expressing your gratitude to someone who has helped you.",
		"Use this grateful feeling to do something kind for someone else.",
		"Take a moment to really appreciate and savor what you're thankful for.",
		"Reflect on how gratitude affects your overall mood and perspective.",
	},
}

// crisisResponses open a crisis intervention message.
var crisisResponses = []string{
	"I'm really concerned about what you've shared. Your life has value, and there are people who want to help you through this difficult time.",
	"It sounds like you're going through something really difficult right now. Please know that you don't have to face this alone.",
	"I can hear that you're in a lot of pain. These feelings are temporary, even when they don't feel like it. Please reach out for support.",
	"What you're feeling right now is intense and overwhelming, but there are people trained to help you through this.",
	"I'm worried about you based on what you've shared. Your feelings are valid, and there are resources available to help you right now.",
}

// professionalHelpHighDistress is appended when intensity runs high.
var professionalHelpHighDistress = []string{
	"While I'm here to support you, it might be really helpful to talk to a counselor or therapist who can provide more personalized guidance.",
	"Consider reaching out to a mental health professional who can work with you on strategies tailored to your specific situation.",
	"A trained counselor might be able to offer additional tools and perspectives that could be really beneficial for you.",
	"You deserve professional support that can provide more comprehensive help than I can offer.",
}

// professionalHelpGeneral closes crisis responses.
var professionalHelpGeneral = []string{
	"Remember that seeking professional help is a sign of strength, not weakness.",
	"Mental health professionals are trained to help with exactly what you're experiencing.",
	"There's no shame in getting additional support from someone who specializes in mental health.",
}

// followUpQuestions invite the user to keep talking.
var followUpQuestions = map[lexicon.Category][]string{
	lexicon.Stressed: {
		"What's the main source of your stress right now?",
		"Have you been able to take any breaks today?",
		"What usually helps you feel less stressed?",
	},
	lexicon.Anxious: {
		"What thoughts are going through your mind?",
		"Is there something specific you're worried about?",
		"What has helped with your anxiety before?",
	},
	lexicon.Sad: {
		"What's been weighing on your heart?",
		"Is there someone you can talk to about this?",
		"What small thing might bring you a bit of comfort?",
	},
	lexicon.Overwhelmed: {
		"What feels like the most urgent thing on your plate?",
		"What's one task you could potentially let go of or ask for help with?",
		"How have you been taking care of yourself lately?",
	},
	lexicon.Angry: {
		"What triggered these feelings for you?",
		"How do you usually handle anger in healthy ways?",
		"What boundary might need to be set here?",
	},
	lexicon.Excited: {
		"What's got you feeling so excited?",
		"How do you want to celebrate or channel this energy?",
		"What are you looking forward to most?",
	},
	lexicon.Positive: {
		"What's contributing to your positive mood today?",
		"How can you maintain this good feeling?",
		"What are you most grateful for right now?",
	},
}

var defaultFollowUps = []string{
	"How are you taking care of yourself today?",
	"What's one thing that might help you feel better?",
	"Is there anything specific you'd like to talk about?",
}

var crisisFollowUps = []string{
	"Is there someone you can call right now?",
	"Are you in a safe place?",
	"Would you like me to help you find local crisis resources?",
}

// Template is the deterministic fallback backend. It assembles responses
// from fixed phrase tables, always succeeds, and never calls the network.
// The variant picked from each table is a hash of the input text, so the
// same input always produces the same response.
type Template struct{}

// NewTemplate returns the template backend.
func NewTemplate() *Template { return &Template{} }

func (t *Template) Name() string    { return "template" }
func (t *Template) Available() bool { return true }

// Attempt assembles a supportive response for the classified request.
func (t *Template) Attempt(_ context.Context, req *Request) (*Candidate, error) {
	start := time.Now()

	cat := lexicon.Neutral
	if req.Emotion != nil {
		cat = req.Emotion.Primary
	}
	seed := hashText(req.Normalized.Clean)

	parts := []string{
		pick(phrasesFor(validationPhrases, cat), seed),
		pick(phrasesFor(supportPhrases, cat), seed+1),
	}
	if highIntensity(req.Sentiment.Intensity) {
		parts = append(parts, pick(professionalHelpHighDistress, seed+2))
	}
	if tips := phrasesFor(copingSuggestions, cat); len(tips) > 0 {
		parts = append(parts, "Here's something that might help: "+pick(tips, seed+3))
	}

	return &Candidate{
		Message: strings.Join(parts, " "),
		Type:    TypeTemplateSupportive,
		Source:  t.Name(),
		Latency: time.Since(start),
	}, nil
}

// Crisis assembles the fixed crisis intervention response. It bypasses the
// normal template assembly entirely.
func (t *Template) Crisis(req *Request) *Candidate {
	seed := hashText(req.Normalized.Clean)
	msg := pick(crisisResponses, seed) + " " + pick(professionalHelpGeneral, seed+1)
	return &Candidate{
		Message: msg,
		Type:    TypeCrisisIntervention,
		Source:  t.Name(),
	}
}

// FollowUps returns conversation prompts for the category.
func (t *Template) FollowUps(cat lexicon.Category) []string {
	if qs, ok := followUpQuestions[cat]; ok {
		return append([]string(nil), qs...)
	}
	return append([]string(nil), defaultFollowUps...)
}

// CrisisFollowUps returns the safety check-in questions for crisis responses.
func (t *Template) CrisisFollowUps() []string {
	return append([]string(nil), crisisFollowUps...)
}

// Suggestions returns inline coping suggestions for the category, more of
// them when intensity runs high. Selection is deterministic in the input.
func (t *Template) Suggestions(cat lexicon.Category, intensity sentiment.Intensity, clean string) []string {
	tips := phrasesFor(copingSuggestions, cat)
	n := 2
	if highIntensity(intensity) {
		n = 3
	}
	if n > len(tips) {
		n = len(tips)
	}
	seed := hashText(clean)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, tips[(int(seed)+i*3)%len(tips)])
	}
	return out
}

func phrasesFor(table map[lexicon.Category][]string, cat lexicon.Category) []string {
	if phrases, ok := table[cat]; ok {
		return phrases
	}
	return table[lexicon.Neutral]
}

func pick(phrases []string, seed uint32) string {
	if len(phrases) == 0 {
		return ""
	}
	return phrases[int(seed)%len(phrases)]
}

func hashText(clean string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(clean))
	return h.Sum32()
}

func highIntensity(i sentiment.Intensity) bool {
	return i == sentiment.IntensityHigh || i == sentiment.IntensityExtreme
}
