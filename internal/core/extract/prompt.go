package extract

import (
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// PromptTextLimit bounds the listing text sent to the model, in characters.
const PromptTextLimit = 2000

const systemPrompt = `Sen Türk emlak verilerini analiz eden bir uzmansın. Verilen HTML içeriğinden emlak ilan bilgilerini çıkartmalısın.

Çıkartman gereken bilgiler:
1. owner_name: İlan sahibinin adı
2. contact_number: İletişim telefon numarası
3. room_count: Oda sayısı (örn: 3+1, 2+1)
4. net_area: Net metrekare
5. is_in_complex: Site içinde mi? (evet/hayır)
6. complex_name: Site adı (varsa)
7. heating_type: Isıtma türü
8. parking_type: Otopark türü (açık/kapalı/yok)
9. credit_suitable: Krediye uygun mu? (evet/hayır/belirtilmemiş)
10. price: Fiyat

Yanıtını JSON formatında ver. Bilgi bulunamazsa boş string ("") kullan.`

// The template is passed as a variable so its braces stay out of FString parsing.
const userPrompt = `Bu emlak ilanından aşağıdaki bilgileri çıkart ve sadece JSON formatında ver:

{content}

{output_template}`

const outputTemplate = `{
    "owner_name": "İlan sahibinin adı",
    "contact_number": "Telefon numarası",
    "room_count": "Oda sayısı (örn: 3+1)",
    "net_area": "Metrekare",
    "is_in_complex": "Site içinde mi? (Evet/Hayır)",
    "complex_name": "Site adı (varsa)",
    "heating_type": "Isıtma türü",
    "parking_type": "Otopark (Kapalı/Açık/Yok)",
    "credit_suitable": "Krediye uygun (Evet/Hayır)",
    "price": "Fiyat"
}`

// ProbePrompt is the single message sent by the connectivity probe.
const ProbePrompt = "Merhaba, test mesajı. Sadece 'Test başarılı!' yaz."

func newListingTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	)
}
