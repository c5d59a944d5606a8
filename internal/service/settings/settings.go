package settings

import "strings"

// Mode — режим обучения. Закрытое множество значений.
type Mode string

const (
	ModeConversation Mode = "conversation"
	ModeGrammar      Mode = "grammar"
	ModeVocabulary   Mode = "vocabulary"
	ModeWriting      Mode = "writing"
)

// Level — уровень владения языком. Закрытое множество значений.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// TeacherPersona — постоянная часть системного промпта учителя.
const TeacherPersona = `You are an experienced English teacher and language learning assistant. Your role is to help students improve their English skills through:

1. **Grammar Correction**: Identify and explain grammar mistakes clearly
2. **Vocabulary Enhancement**: Suggest better word choices and explain meanings
3. **Conversation Practice**: Engage in natural conversations while providing gentle corrections
4. **Learning Guidance**: Provide tips and explanations to help students understand English better

Guidelines:
- Be encouraging and supportive, never harsh or critical
- Explain corrections clearly with examples
- Adapt your language to the student's level
- Focus on practical, everyday English
- Provide context for new vocabulary
- Ask follow-up questions to encourage practice
- Celebrate progress and improvements

Always maintain a friendly, patient, and professional tone.`

// AnalysisPersona — системный промпт второго запроса (разбор ввода ученика).
const AnalysisPersona = "You are a language analysis assistant. Provide concise, helpful feedback."

// SummaryPersona — системный промпт запроса итогов сессии.
const SummaryPersona = "Provide a brief summary of this English learning conversation, highlighting key topics and improvements."

type modeInfo struct {
	label       string
	description string
	example     string
	tips        []string
	bullets     string // пункты инструкции режима
	analysis    string // инструкция для разбора
}

type levelInfo struct {
	label   string
	context string
}

var modes = map[Mode]modeInfo{
	ModeConversation: {
		label:       "Conversation Practice",
		description: "Practice natural conversation with gentle corrections",
		example:     "Hi! I'm learning English. Can we talk about your favorite hobby?",
		tips: []string{
			"Don't worry about making mistakes - they're part of learning!",
			"Try to use new vocabulary you've learned",
			"Ask questions to keep the conversation flowing",
			"Focus on expressing your ideas clearly",
		},
		bullets: `- Engage in natural conversation
- Gently correct mistakes when they occur
- Ask follow-up questions to keep the conversation flowing
- Provide explanations for corrections`,
		analysis: "Analyze this text for any language issues. Provide gentle corrections and suggestions.",
	},
	ModeGrammar: {
		label:       "Grammar Check",
		description: "Focus on grammar corrections and explanations",
		example:     "I have went to the store yesterday and buyed some apples.",
		tips: []string{
			"Pay attention to verb tenses",
			"Look for patterns in your mistakes",
			"Practice with similar sentences",
			"Review corrections carefully",
		},
		bullets: `- Focus specifically on grammar corrections
- Explain grammar rules clearly
- Provide examples of correct usage
- Identify patterns in the student's mistakes`,
		analysis: "Analyze this text for grammar mistakes. List any errors and provide corrections with explanations.",
	},
	ModeVocabulary: {
		label:       "Vocabulary Building",
		description: "Improve your vocabulary with better word choices",
		example:     "The weather is very good today. I feel happy.",
		tips: []string{
			"Learn words in context",
			"Use new words in different sentences",
			"Keep a vocabulary notebook",
			"Focus on words you use often",
		},
		bullets: `- Suggest better word choices
- Explain word meanings and usage
- Provide synonyms and antonyms
- Give examples of how to use new words`,
		analysis: "Analyze this text for vocabulary improvements. Suggest better word choices and explain why.",
	},
	ModeWriting: {
		label:       "Writing Practice",
		description: "Get feedback on your writing style and structure",
		example:     "I want to write a letter to my friend about my vacation.",
		tips: []string{
			"Plan your ideas before writing",
			"Use varied sentence structures",
			"Check for clarity and flow",
			"Read your writing aloud",
		},
		bullets: `- Review the student's writing
- Suggest improvements for clarity and style
- Focus on sentence structure and flow
- Provide constructive feedback`,
		analysis: "Analyze this text for writing quality. Suggest improvements for clarity, style, and structure.",
	},
}

var levels = map[Level]levelInfo{
	LevelBeginner: {
		label:   "Beginner (A1-A2)",
		context: "The student is a beginner. Use simple vocabulary and short sentences. Focus on basic grammar and common words.",
	},
	LevelIntermediate: {
		label:   "Intermediate (B1-B2)",
		context: "The student is at an intermediate level. Use varied vocabulary and explain more complex grammar concepts.",
	},
	LevelAdvanced: {
		label:   "Advanced (C1-C2)",
		context: "The student is advanced. Focus on nuanced language, idioms, and sophisticated expressions.",
	},
}

// Порядок отображения в интерфейсе.
var (
	modeOrder  = []Mode{ModeConversation, ModeGrammar, ModeVocabulary, ModeWriting}
	levelOrder = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
)

// Modes возвращает все режимы в порядке отображения.
func Modes() []Mode { return append([]Mode(nil), modeOrder...) }

// Levels возвращает все уровни в порядке отображения.
func Levels() []Level { return append([]Level(nil), levelOrder...) }

// ParseMode разбирает строку в режим. false — значение не из множества.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	_, ok := modes[m]
	return m, ok
}

// ParseLevel разбирает строку в уровень. false — значение не из множества.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	_, ok := levels[l]
	return l, ok
}

// Known сообщает, входит ли режим в закрытое множество.
func (m Mode) Known() bool {
	_, ok := modes[m]
	return ok
}

func (m Mode) info() modeInfo {
	if mi, ok := modes[m]; ok {
		return mi
	}
	return modes[ModeConversation]
}

func (m Mode) Label() string       { return m.info().label }
func (m Mode) Description() string { return m.info().description }
func (m Mode) Example() string     { return m.info().example }
func (m Mode) Tips() []string      { return append([]string(nil), m.info().tips...) }

// Known сообщает, входит ли уровень в закрытое множество.
func (l Level) Known() bool {
	_, ok := levels[l]
	return ok
}

func (l Level) info() levelInfo {
	if li, ok := levels[l]; ok {
		return li
	}
	return levels[LevelIntermediate]
}

func (l Level) Label() string { return l.info().label }

// ModePrompt возвращает инструкцию режима с учётом уровня.
// Неизвестный режим заменяется на conversation, неизвестный уровень — на intermediate.
func ModePrompt(mode Mode, level Level) string {
	mi := mode.info()
	var b strings.Builder
	b.WriteString("Mode: ")
	b.WriteString(mi.label)
	b.WriteString("\n")
	b.WriteString(level.info().context)
	b.WriteString("\n")
	b.WriteString(mi.bullets)
	return b.String()
}

// SystemPrompt — персона учителя плюс инструкция режима.
func SystemPrompt(mode Mode, level Level) string {
	return TeacherPersona + "\n\n" + ModePrompt(mode, level)
}

// AnalysisPrompt возвращает инструкцию для разбора ввода. Неизвестный режим — conversation.
func AnalysisPrompt(mode Mode) string {
	return mode.info().analysis
}
