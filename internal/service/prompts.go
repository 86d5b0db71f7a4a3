package service

import (
	"scholar-agent-go/internal/config"
	"strings"
)

const defaultSystemInstruction = `
Sen "Araştırmacı Ajanlar Projesi" kapsamında geliştirilmiş, üst düzey bir akademik yazım ve araştırma asistanısın.

GÖREVLER:
1. Akademik Metin Yazımı: Kullanıcının verdiği komutlara göre metni düzenlemek, genişletmek veya yeniden yazmak.
2. APA 7 Formatı Denetimi: Özellikle p-değerleri, kaynakça ve atıf formatlarını APA 7 standartlarına göre titizlikle düzeltmek (örn: p < .001).
3. Desk Rejection (Yayın Öncesi Red) Kontrolü: Metni mantıksal akış, hipotez netliği ve metodolojik tutarlılık açısından incelemek.

ÖNEMLİ - METİN DÜZENLEME KURALI:
Eğer kullanıcı belgenin içeriğinde bir değişiklik isterse (örn: "şurayı düzelt", "bu paragrafı ekle", "daha resmi yaz", "makaleye dönüştür"), cevabını KESİNLİKLE aşağıdaki JSON formatında vermelisin:

{
  "explanation": "Yapılan değişikliğin kısa açıklaması",
  "rewritten_text": "DÜZENLENMİŞ BELGENİN TAMAMI"
}

DİKKAT: "rewritten_text" alanı, sadece değişen paragrafı değil, belgenin BÜTÜNÜNÜ (değişiklikler uygulanmış haliyle) içermelidir. Kullanıcı "Uygula" dediğinde bu metin eskisinin üzerine yazılacaktır.

Eğer sadece bir soru soruluyorsa veya analiz isteniyorsa (belge değişmeyecekse), JSON formatı ZORUNLU DEĞİLDİR, normal metin olarak yanıtlayabilirsin.
`

const defaultWelcome = `**Araştırmacı Ajanlar Projesi**
Akademik yazım asistanınız hazır. Belgenizi düzenleyebilir, APA 7 denetimi yapabilir veya desk rejection riskini analiz edebilirsiniz.`

// %s 为当前文档全文
const defaultAPAPrompt = `Aşağıdaki akademik metni incele. Tüm istatistiksel raporlamaları (p değerleri, t testleri, ANOVA vb.) bul ve APA 7 kurallarına göre (örn: p < .001, virgülden sonra italik vb. detaylar) yeniden biçimlendir.

ÇIKTI OLARAK SADECE VE SADECE DÜZELTİLMİŞ TAM METNİ DÖNDÜR. JSON kullanma, başka bir açıklama yapma.

Metin:
%s`

// %s 为当前文档全文
const defaultRiskPrompt = `Aşağıdaki akademik metni "Desk Rejection" (Editör reddi) riskleri açısından analiz et.

Lütfen yanıtını KESİNLİKLE aşağıdaki JSON formatında ver:
{
    "overallScore": 85, (0-100 arası, 100 mükemmel)
    "verdict": "Yayına Hazır" | "Düşük Risk" | "Orta Risk" | "Yüksek Risk",
    "details": [
        { "criterion": "Hipotez Netliği", "score": 8, "feedback": "Kısa bir cümlelik eleştiri." },
        { "criterion": "Yöntem Tutarlılığı", "score": 6, "feedback": "Kısa bir cümlelik eleştiri." },
        { "criterion": "Dil ve Akıcılık", "score": 9, "feedback": "Kısa bir cümlelik eleştiri." },
        { "criterion": "Literatüre Katkı", "score": 7, "feedback": "Kısa bir cümlelik eleştiri." }
    ]
}

Metin:
%s`

const defaultErrorMessage = "Üzgünüm, şu anda isteğinizi işleyemiyorum. Bağlantınızı kontrol edip tekrar deneyin."

const (
	suggestionNoteHeader = "\n\n[Sistem Notu: Model bu adımda şu belge içeriğini önerdi]:\n"
	documentTrailerHead  = "\n\n[GÜNCEL ÇALIŞMA BELGESİ]:\n"
	documentTrailerTail  = "\n\nLütfen yukarıdaki belgeyi referans alarak veya düzenleyerek yanıt ver. Değişiklik gerekirse JSON formatında tüm metni döndür."

	defaultSuggestionText = "İşte güncellenmiş metin önerisi:"
	apaAppliedText        = "APA 7 denetimi tamamlandı, belge güncellendi."
	apaSuggestedText      = "APA 7 denetimi tamamlandı. Düzeltilmiş metni uygulamak için onaylayın."
	riskDoneText          = "Desk rejection risk analizi tamamlandı."
)

// Prompts 汇总各操作使用的指令文本。
type Prompts struct {
	System   string
	Welcome  string
	APA      string
	Risk     string
	ErrorMsg string
}

// NewPrompts 从配置读取提示词，缺失项回退到内置默认值。
func NewPrompts(cfg config.PromptConfig) Prompts {
	p := Prompts{
		System:   defaultSystemInstruction,
		Welcome:  defaultWelcome,
		APA:      defaultAPAPrompt,
		Risk:     defaultRiskPrompt,
		ErrorMsg: defaultErrorMessage,
	}
	if cfg.System != "" {
		p.System = cfg.System
	}
	if cfg.Welcome != "" {
		p.Welcome = cfg.Welcome
	}
	if cfg.APA != "" {
		p.APA = cfg.APA
	}
	if cfg.Risk != "" {
		p.Risk = cfg.Risk
	}
	if cfg.ErrorMsg != "" {
		p.ErrorMsg = cfg.ErrorMsg
	}
	return p
}

func (p Prompts) apaPrompt(document string) string {
	return embedDocument(p.APA, document)
}

func (p Prompts) riskPrompt(document string) string {
	return embedDocument(p.Risk, document)
}

// embedDocument 把文档填入模板的 %s；自定义模板没有占位符时追加到末尾。
func embedDocument(template, document string) string {
	if !strings.Contains(template, "%s") {
		return template + "\n\n" + document
	}
	return strings.Replace(template, "%s", document, 1)
}
