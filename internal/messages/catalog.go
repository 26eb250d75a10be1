// Package messages holds the fixed reply templates and encouragement
// phrase pools used by the bot. All user-visible text lives here so the
// dispatcher and composer stay free of literals.
package messages

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Template texts. The tone is deliberately gentle; raw error details are
// never shown to staff.
const (
	WelcomeGuide = "困ったときは「ヘルプ」と送ってくださいね。\n今日の報告書を確認するには「今日の報告書」と送ってください！"

	QuickMenuPrompt = "何かお手伝いできることはありますか？"

	HelpText = "📚 RepoTomoの使い方\n\n【基本的な使い方】\n1️⃣ 「今日の報告書」\n→ 今日提出する報告書を確認\n\n2️⃣ 報告書の提出\n→ カードの「✅提出完了」をタップ\n\n3️⃣ 困ったとき\n→ 「💬相談」で質問できます\n\n【その他の機能】\n・「履歴」→ 最近の提出履歴\n・Webアプリでさらに便利に！\n\n何か分からないことがあれば\nいつでも聞いてくださいね😊"

	ThanksText = "こちらこそ、いつもお疲れさまです！😊\n何かあればいつでも聞いてくださいね。"

	DefaultText = "メッセージありがとうございます😊"

	NoReportsToday = "今日提出する報告書はありません！😊\nゆっくり休んでくださいね。"

	NoHistory = "まだ提出履歴がありません。\n最初の報告書、一緒に頑張りましょう！💪"

	HistoryHeader = "📋 最近の提出履歴"

	ConsultPrompt   = "どんなことでもお気軽に相談してくださいね😊\n\n質問内容を入力して送信してください。"
	ConsultExamples = "例：\n・書き方がわからない\n・データの場所を教えてほしい\n・締切を延ばしてほしい"

	ErrNotRegistered = "申し訳ありません。スタッフ登録が見つかりません。\n管理者にお問い合わせください。"
	ErrGeneral       = "ちょっと調子が悪いみたい😅\nもう一度試してみてください。"

	CarouselHint   = "余裕があるときに提出してくださいね"
	NoDeadline     = "期限なし"
	PlaceholderName = "スタッフ"
)

// WelcomeGreeting formats the follow-event greeting for a staff member.
func WelcomeGreeting(name string) string {
	return fmt.Sprintf("%sさん、RepoTomoへようこそ！🎉\n\n報告書の提出がとっても簡単になりますよ😊", name)
}

// TodaySummary formats the owed-report count line shown above the carousel.
func TodaySummary(count int) string {
	return fmt.Sprintf("今日の報告書は%d件です📋\n無理せず、できる範囲で大丈夫ですよ😊", count)
}

// CarouselAltText formats the notification text of the report carousel.
func CarouselAltText(count int) string {
	return fmt.Sprintf("本日の報告書（%d件）", count)
}

// DueDateHint formats the due-date line on a carousel card.
func DueDateHint(dueDate string) string {
	if dueDate == "" {
		dueDate = NoDeadline
	}
	return fmt.Sprintf("%s頃まで", dueDate)
}

// Kind selects an encouragement phrase pool.
type Kind string

const (
	KindSubmit  Kind = "submit"
	KindConsult Kind = "consult"
)

var submitPhrases = []string{
	"お疲れさまでした！提出ありがとうございます😊",
	"素晴らしい！今日もがんばりましたね🌟",
	"提出完了です！ゆっくり休んでくださいね☕",
	"ありがとうございます！とても助かります💪",
}

var consultPhrases = []string{
	"質問を受け付けました！担当者から返信しますね😊",
	"困ったときはいつでも相談してくださいね💬",
	"質問ありがとうございます。一緒に解決しましょう💪",
}

// Picker selects encouragement phrases from the fixed pools using an
// injected random source so tests can be deterministic.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a Picker backed by the given source.
// Pass rand.NewPCG-seeded sources in production, a fixed seed in tests.
func NewPicker(src rand.Source) *Picker {
	return &Picker{rng: rand.New(src)}
}

// Pick returns a uniformly random phrase from the pool for kind.
// Unknown kinds fall back to the submit pool.
func (p *Picker) Pick(kind Kind) string {
	pool := Phrases(kind)

	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rng.IntN(len(pool))]
}

// Phrases returns the fixed phrase pool for kind.
func Phrases(kind Kind) []string {
	if kind == KindConsult {
		return consultPhrases
	}
	return submitPhrases
}
