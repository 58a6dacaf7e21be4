package domain

import "strings"

// Prompt placeholders.
const (
	PlaceholderContext  = "{context}"
	PlaceholderQuestion = "{question}"
)

// DefaultAnswerPrompt instructs the synthesizer to answer only from the
// retrieved context and to admit when the context has no answer.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultAnswerPrompt = `[INSTRUKSI]
Anda adalah asisten knowledge management perkeretaapian Indonesia. Jawab pertanyaan pengguna berdasarkan konteks yang diberikan dengan akurat. Jika informasi tidak ada dalam konteks, katakan Anda tidak tahu.

[KONTEKS]
{context}

[PERTANYAAN]
{question}

[JAWABAN]`

// DefaultRefinePrompt asks for a follow-up question to be rewritten as a
// single standalone question.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultRefinePrompt = `Berikut ini adalah bagian akhir dari percakapan. Pengguna baru saja bertanya: '{question}'.
Tolong ubah pertanyaan ini menjadi versi lengkap yang lebih jelas berdasarkan konteks sebelumnya.
Jangan tambahkan penjelasan tambahan. Jika pertanyaan baru oleh pengguna di luar konteks percakapan sebelumnya, maka kembalikan ulang pertanyaan pengguna. Hanya berikan satu kalimat pertanyaan lengkap saja sebagai output.`

// RenderPrompt substitutes the context and question into a template.
// Placeholders inside the substituted values are left alone.
func RenderPrompt(template, context, question string) string {
	return strings.NewReplacer(
		PlaceholderContext, context,
		PlaceholderQuestion, question,
	).Replace(template)
}
