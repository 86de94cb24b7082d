package extract

// Reply keys the language model must use.
const (
	KeyAge    = "wiek"
	KeyGender = "płeć"
	KeyPace   = "tempo_5km"
)

// SpanName identifies extraction calls in the trace sink.
const SpanName = "data_extraction"

const systemPrompt = `Twoim zadaniem jest precyzyjne wyekstrahowanie trzech informacji z tekstu podanego przez użytkownika:
1. ` + "`wiek`" + ` (jako liczba całkowita)
2. ` + "`płeć`" + ` (jako string: "Kobieta" lub "Mężczyzna")
3. ` + "`tempo_5km`" + ` (jako liczba zmiennoprzecinkowa, w minutach na kilometr, np. 6.5 dla 6:30 min/km)

Zwróć odpowiedź WYŁĄCZNIE w formacie JSON, który zawiera te trzy klucze.
Jeśli którejś informacji brakuje, przypisz jej wartość null. Nie zgaduj brakujących wartości.
Przykład: {"wiek": 35, "płeć": "Mężczyzna", "tempo_5km": 5.75}`

// SystemPrompt returns the fixed extraction instruction.
func SystemPrompt() string { return systemPrompt }
