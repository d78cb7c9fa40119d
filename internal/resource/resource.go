// Package resource holds the static game content: the per-language
// question bank, AI fallback answers, and the nickname word lists.
package resource

import (
	"fmt"

	"impostorhunt/internal/random"
)

const DefaultLanguage = "en"

var questionBank = map[string][]string{
	"en": {
		"What is your favorite weekend activity?",
		"Describe your ideal vacation destination.",
		"What was the last book you enjoyed reading?",
		"If you could learn any new skill instantly, what would it be?",
		"What is a food you never get tired of?",
		"What's your go-to comfort food after a long day?",
		"Are you an early bird or a night owl, and why?",
		"Which song have you been replaying lately?",
		"What's a hobby you do to unwind after work or school?",
		"Coffee or tea—how do you like it?",
		"What's one small thing that always improves your day?",
		"What's your favorite way to spend a rainy afternoon?",
	},
	"ko": {
		"주말에 가장 좋아하는 활동은 무엇인가요?",
		"이상적인 휴가지에 대해 설명해 주세요.",
		"최근에 재미있게 읽은 책은 무엇인가요?",
		"새로운 기술을 바로 배울 수 있다면 무엇을 배우고 싶나요?",
		"질리지 않고 계속 먹을 수 있는 음식은 무엇인가요?",
		"긴 하루 끝에 찾게 되는 소울푸드는 무엇인가요?",
		"아침형인가요, 저녁형인가요? 그 이유는?",
		"요즘 자주 반복해서 듣는 노래는 무엇인가요?",
		"퇴근/하교 후 마음을 풀기 위해 하는 취미가 있나요?",
		"커피와 차 중 무엇을 더 선호하고, 어떻게 마시는 편인가요?",
		"하루를 조금 더 좋게 만드는 작은 습관은 무엇인가요?",
		"비 오는 오후를 가장 좋아하는 보내는 방법은 무엇인가요?",
	},
}

var fallbackAnswers = map[string][]string{
	"en": {
		"I'm not sure how to answer that right now.",
		"That's an interesting question. I'd have to think about it.",
		"That's a tough one. Let me get back to you on that.",
		"I'm drawing a blank on that question.",
	},
	"ko": {
		"지금은 어떻게 답해야 할지 잘 모르겠어요.",
		"그건 좀 어려운 질문이네요.",
		"그 질문에 대해서는 좀 더 생각해봐야 할 것 같아요.",
	},
}

var adjectives = []string{
	"Witty", "Clever", "Silent", "Sneaky", "Wise", "Brave", "Calm", "Eager",
	"Gentle", "Happy", "Jolly", "Kind", "Lively", "Nice", "Proud", "Silly",
}

var animals = []string{
	"Walrus", "Cat", "Wolf", "Dog", "Lion", "Tiger", "Bear", "Fox", "Shark",
	"Eagle", "Owl", "Hawk", "Snake", "Rabbit", "Deer", "Goat",
}

// SupportedLanguage reports whether a question pool exists for lang.
func SupportedLanguage(lang string) bool {
	_, ok := questionBank[lang]
	return ok
}

// Question draws a random question from the language's pool, falling back
// to English for unknown languages. Repeats across rounds are allowed.
func Question(src random.Source, lang string) string {
	pool, ok := questionBank[lang]
	if !ok {
		pool = questionBank[DefaultLanguage]
	}
	return pool[src.Intn(len(pool))]
}

// FallbackAnswer draws a canned answer used when AI generation fails.
func FallbackAnswer(src random.Source, lang string) string {
	pool, ok := fallbackAnswers[lang]
	if !ok {
		pool = fallbackAnswers[DefaultLanguage]
	}
	return pool[src.Intn(len(pool))]
}

// PlaceholderAnswer is the deterministic last-resort answer text, used
// when generation cannot even be attempted.
func PlaceholderAnswer(round int) string {
	return fmt.Sprintf("This is a template message for testing round %d.", round)
}

// Nicknames generates count unique adjective+animal display names.
func Nicknames(src random.Source, count int) ([]string, error) {
	if count > len(adjectives)*len(animals) {
		return nil, fmt.Errorf("cannot generate %d unique nicknames", count)
	}

	used := make(map[string]struct{}, count)
	names := make([]string, 0, count)
	for len(names) < count {
		name := adjectives[src.Intn(len(adjectives))] + " " + animals[src.Intn(len(animals))]
		if _, ok := used[name]; ok {
			continue
		}
		used[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}
