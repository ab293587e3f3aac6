package utils

// Server-side i18n for fixed keys: validation messages, step titles and a few
// admin strings. Message templates may carry fmt verbs filled by callers.

var translations = map[string]map[string]string{
	"fr": {
		"health.ok": "ok",

		"validate.org_required":        "R2 : indiquez votre organisation.",
		"validate.org_short":           "R2 : le nom de l'organisation est trop court (min. %d caractères).",
		"validate.country_required":    "R2 : sélectionnez votre pays de résidence.",
		"validate.country_other":       "R2 : précisez le pays (champ « Autre »).",
		"validate.actor_required":      "R2 : sélectionnez votre type d'acteur.",
		"validate.function_required":   "R2 : sélectionnez votre fonction.",
		"validate.function_other":      "R2 : précisez votre fonction (champ « Autre »).",
		"validate.email_invalid":       "R2 : adresse email invalide.",
		"validate.scope_required":      "R3 : sélectionnez la portée de votre institution.",
		"validate.scope_other":         "R3 : précisez la portée (champ « Autre »).",
		"validate.snds_required":       "R3 : indiquez le statut de la SNDS.",
		"validate.presel_count":        "R4 : présélectionnez entre %d et %d domaines (actuellement %d).",
		"validate.presel_dups":         "R4 : la présélection contient des doublons.",
		"validate.top5_count":          "R4 : choisissez exactement %d domaines prioritaires (actuellement %d).",
		"validate.top5_dups":           "R4 : le top 5 contient des doublons.",
		"validate.top5_subset":         "R4 : le top 5 doit être issu de la présélection.",
		"validate.stats_per_domain":    "R5 : choisissez 1 à 3 statistiques pour le domaine %s (actuellement %d).",
		"validate.stats_total":         "R5 : sélectionnez entre %d et %d statistiques au total (actuellement %d).",
		"validate.stats_dup":           "R5 : la statistique %s est sélectionnée dans plusieurs domaines.",
		"validate.score_missing":       "R5 : notez %s pour la statistique %s (0 à 3).",
		"validate.gender_incomplete":   "R6 : répondez pour chaque ligne du tableau genre.",
		"validate.gender_spec":         "R6 : précisez la réponse « partiellement » pour %s.",
		"validate.prio1_required":      "R7 : sélectionnez au moins la priorité 1.",
		"validate.prio_dups":           "R7 : les priorités doivent être distinctes.",
		"validate.prio_unknown":        "R7 : code de priorité inconnu : %s.",
		"validate.prio3_requires2":     "R7 : renseignez la priorité 2 avant la priorité 3.",
		"validate.prio_other":          "R7 : précisez la priorité « Autre ».",
		"validate.capacity_incomplete": "R8 : répondez pour chaque ligne du tableau capacités.",
		"validate.quality_count":       "R9 : choisissez entre %d et %d attentes de qualité (actuellement %d).",
		"validate.quality_other":       "R9 : précisez l'attente « Autre ».",
		"validate.channels_count":      "R10 : choisissez entre %d et %d canaux de diffusion (actuellement %d).",
		"validate.channels_other":      "R10 : précisez le canal « Autre ».",
		"validate.sources_count":       "R11 : choisissez entre %d et %d sources de données (actuellement %d).",
		"validate.sources_other":       "R11 : précisez la source « Autre ».",
		"validate.consulted_required":  "R12 : indiquez si vous avez consulté d'autres collègues.",

		"submit.blocked_errors":  "Le questionnaire contient des erreurs bloquantes.",
		"submit.duplicate_email": "Ce questionnaire a déjà été envoyé avec cet email. Un seul envoi est autorisé.",
		"submit.save_failed":     "Échec d'enregistrement (base locale). Conservez la copie JSON fournie.",

		"step.R1":   "Introduction",
		"step.R2":   "Identification du répondant",
		"step.R3":   "Portée institutionnelle et SNDS",
		"step.R4":   "Domaines prioritaires",
		"step.R5":   "Statistiques prioritaires et notation",
		"step.R6":   "Dimension genre",
		"step.R7":   "Priorités genre",
		"step.R8":   "Capacités statistiques",
		"step.R9":   "Attentes de qualité",
		"step.R10":  "Canaux de diffusion",
		"step.R11":  "Sources de données",
		"step.R12":  "Questions finales",
		"step.SEND": "ENVOYER le questionnaire",
	},
	"en": {
		"health.ok": "ok",

		"validate.org_required":        "R2: enter your organisation.",
		"validate.org_short":           "R2: organisation name is too short (min. %d characters).",
		"validate.country_required":    "R2: select your country of residence.",
		"validate.country_other":       "R2: specify the country (\"Other\" field).",
		"validate.actor_required":      "R2: select your stakeholder type.",
		"validate.function_required":   "R2: select your function.",
		"validate.function_other":      "R2: specify your function (\"Other\" field).",
		"validate.email_invalid":       "R2: invalid email address.",
		"validate.scope_required":      "R3: select your institution's scope.",
		"validate.scope_other":         "R3: specify the scope (\"Other\" field).",
		"validate.snds_required":       "R3: indicate the NSDS status.",
		"validate.presel_count":        "R4: preselect between %d and %d domains (currently %d).",
		"validate.presel_dups":         "R4: the preselection contains duplicates.",
		"validate.top5_count":          "R4: pick exactly %d priority domains (currently %d).",
		"validate.top5_dups":           "R4: the top 5 contains duplicates.",
		"validate.top5_subset":         "R4: the top 5 must come from the preselection.",
		"validate.stats_per_domain":    "R5: pick 1 to 3 statistics for domain %s (currently %d).",
		"validate.stats_total":         "R5: select between %d and %d statistics in total (currently %d).",
		"validate.stats_dup":           "R5: statistic %s is selected in more than one domain.",
		"validate.score_missing":       "R5: score %s for statistic %s (0 to 3).",
		"validate.gender_incomplete":   "R6: answer every row of the gender table.",
		"validate.gender_spec":         "R6: specify the \"partially\" answer for %s.",
		"validate.prio1_required":      "R7: select at least priority 1.",
		"validate.prio_dups":           "R7: priorities must be distinct.",
		"validate.prio_unknown":        "R7: unknown priority code: %s.",
		"validate.prio3_requires2":     "R7: fill priority 2 before priority 3.",
		"validate.prio_other":          "R7: specify the \"Other\" priority.",
		"validate.capacity_incomplete": "R8: answer every row of the capacity table.",
		"validate.quality_count":       "R9: pick between %d and %d quality expectations (currently %d).",
		"validate.quality_other":       "R9: specify the \"Other\" expectation.",
		"validate.channels_count":      "R10: pick between %d and %d dissemination channels (currently %d).",
		"validate.channels_other":      "R10: specify the \"Other\" channel.",
		"validate.sources_count":       "R11: pick between %d and %d data sources (currently %d).",
		"validate.sources_other":       "R11: specify the \"Other\" source.",
		"validate.consulted_required":  "R12: indicate whether you consulted other colleagues.",

		"submit.blocked_errors":  "There are blocking errors in the questionnaire.",
		"submit.duplicate_email": "This questionnaire has already been submitted with this email. Only one submission is allowed.",
		"submit.save_failed":     "Save failed (local database). Keep the provided JSON copy.",

		"step.R1":   "Introduction",
		"step.R2":   "Respondent identification",
		"step.R3":   "Institutional scope and NSDS",
		"step.R4":   "Priority domains",
		"step.R5":   "Priority statistics and scoring",
		"step.R6":   "Gender dimension",
		"step.R7":   "Gender priorities",
		"step.R8":   "Statistical capacities",
		"step.R9":   "Quality expectations",
		"step.R10":  "Dissemination channels",
		"step.R11":  "Data sources",
		"step.R12":  "Final questions",
		"step.SEND": "SUBMIT questionnaire",
	},
	"pt": {
		"health.ok": "ok",

		"validate.org_required":        "R2: indique a sua organização.",
		"validate.org_short":           "R2: o nome da organização é demasiado curto (mín. %d caracteres).",
		"validate.country_required":    "R2: selecione o seu país de residência.",
		"validate.country_other":       "R2: especifique o país (campo \"Outro\").",
		"validate.actor_required":      "R2: selecione o seu tipo de ator.",
		"validate.function_required":   "R2: selecione a sua função.",
		"validate.function_other":      "R2: especifique a sua função (campo \"Outro\").",
		"validate.email_invalid":       "R2: endereço de email inválido.",
		"validate.scope_required":      "R3: selecione o âmbito da sua instituição.",
		"validate.scope_other":         "R3: especifique o âmbito (campo \"Outro\").",
		"validate.snds_required":       "R3: indique o estado da ENDE.",
		"validate.presel_count":        "R4: pré-selecione entre %d e %d domínios (atualmente %d).",
		"validate.presel_dups":         "R4: a pré-seleção contém duplicados.",
		"validate.top5_count":          "R4: escolha exatamente %d domínios prioritários (atualmente %d).",
		"validate.top5_dups":           "R4: o top 5 contém duplicados.",
		"validate.top5_subset":         "R4: o top 5 deve vir da pré-seleção.",
		"validate.stats_per_domain":    "R5: escolha 1 a 3 estatísticas para o domínio %s (atualmente %d).",
		"validate.stats_total":         "R5: selecione entre %d e %d estatísticas no total (atualmente %d).",
		"validate.stats_dup":           "R5: a estatística %s está selecionada em mais de um domínio.",
		"validate.score_missing":       "R5: pontue %s para a estatística %s (0 a 3).",
		"validate.gender_incomplete":   "R6: responda a todas as linhas da tabela de género.",
		"validate.gender_spec":         "R6: especifique a resposta \"parcialmente\" para %s.",
		"validate.prio1_required":      "R7: selecione pelo menos a prioridade 1.",
		"validate.prio_dups":           "R7: as prioridades devem ser distintas.",
		"validate.prio_unknown":        "R7: código de prioridade desconhecido: %s.",
		"validate.prio3_requires2":     "R7: preencha a prioridade 2 antes da prioridade 3.",
		"validate.prio_other":          "R7: especifique a prioridade \"Outro\".",
		"validate.capacity_incomplete": "R8: responda a todas as linhas da tabela de capacidades.",
		"validate.quality_count":       "R9: escolha entre %d e %d expectativas de qualidade (atualmente %d).",
		"validate.quality_other":       "R9: especifique a expectativa \"Outro\".",
		"validate.channels_count":      "R10: escolha entre %d e %d canais de difusão (atualmente %d).",
		"validate.channels_other":      "R10: especifique o canal \"Outro\".",
		"validate.sources_count":       "R11: escolha entre %d e %d fontes de dados (atualmente %d).",
		"validate.sources_other":       "R11: especifique a fonte \"Outro\".",
		"validate.consulted_required":  "R12: indique se consultou outros colegas.",

		"submit.blocked_errors":  "O questionário contém erros bloqueantes.",
		"submit.duplicate_email": "Este questionário já foi enviado com este email. Apenas um envio é permitido.",
		"submit.save_failed":     "Falha ao guardar (base local). Conserve a cópia JSON fornecida.",

		"step.R1":   "Introdução",
		"step.R2":   "Identificação do respondente",
		"step.R3":   "Âmbito institucional e ENDE",
		"step.R4":   "Domínios prioritários",
		"step.R5":   "Estatísticas prioritárias e pontuação",
		"step.R6":   "Dimensão de género",
		"step.R7":   "Prioridades de género",
		"step.R8":   "Capacidades estatísticas",
		"step.R9":   "Expectativas de qualidade",
		"step.R10":  "Canais de difusão",
		"step.R11":  "Fontes de dados",
		"step.R12":  "Questões finais",
		"step.SEND": "ENVIAR questionário",
	},
	"ar": {
		"health.ok": "حسنًا",

		"validate.org_required":        "R2: أدخل اسم مؤسستك.",
		"validate.org_short":           "R2: اسم المؤسسة قصير جدًا (الحد الأدنى %d حرفًا).",
		"validate.country_required":    "R2: اختر بلد الإقامة.",
		"validate.country_other":       "R2: حدّد البلد (حقل \"أخرى\").",
		"validate.actor_required":      "R2: اختر نوع الجهة الفاعلة.",
		"validate.function_required":   "R2: اختر وظيفتك.",
		"validate.function_other":      "R2: حدّد وظيفتك (حقل \"أخرى\").",
		"validate.email_invalid":       "R2: عنوان البريد الإلكتروني غير صالح.",
		"validate.scope_required":      "R3: اختر نطاق مؤسستك.",
		"validate.scope_other":         "R3: حدّد النطاق (حقل \"أخرى\").",
		"validate.snds_required":       "R3: حدّد حالة الاستراتيجية الوطنية لتطوير الإحصاء.",
		"validate.presel_count":        "R4: اختر مبدئيًا بين %d و%d مجالات (حاليًا %d).",
		"validate.presel_dups":         "R4: الاختيار المبدئي يحتوي على تكرارات.",
		"validate.top5_count":          "R4: اختر %d مجالات ذات أولوية بالضبط (حاليًا %d).",
		"validate.top5_dups":           "R4: قائمة الخمسة الأوائل تحتوي على تكرارات.",
		"validate.top5_subset":         "R4: يجب أن تأتي قائمة الخمسة الأوائل من الاختيار المبدئي.",
		"validate.stats_per_domain":    "R5: اختر من 1 إلى 3 إحصاءات للمجال %s (حاليًا %d).",
		"validate.stats_total":         "R5: اختر بين %d و%d إحصاءات في المجموع (حاليًا %d).",
		"validate.stats_dup":           "R5: الإحصاء %s مختار في أكثر من مجال.",
		"validate.score_missing":       "R5: قيّم %s للإحصاء %s (من 0 إلى 3).",
		"validate.gender_incomplete":   "R6: أجب عن كل سطر في جدول النوع الاجتماعي.",
		"validate.gender_spec":         "R6: حدّد الإجابة \"جزئيًا\" لـ %s.",
		"validate.prio1_required":      "R7: اختر الأولوية 1 على الأقل.",
		"validate.prio_dups":           "R7: يجب أن تكون الأولويات مختلفة.",
		"validate.prio_unknown":        "R7: رمز أولوية غير معروف: %s.",
		"validate.prio3_requires2":     "R7: املأ الأولوية 2 قبل الأولوية 3.",
		"validate.prio_other":          "R7: حدّد الأولوية \"أخرى\".",
		"validate.capacity_incomplete": "R8: أجب عن كل سطر في جدول القدرات.",
		"validate.quality_count":       "R9: اختر بين %d و%d من توقعات الجودة (حاليًا %d).",
		"validate.quality_other":       "R9: حدّد التوقع \"أخرى\".",
		"validate.channels_count":      "R10: اختر بين %d و%d من قنوات النشر (حاليًا %d).",
		"validate.channels_other":      "R10: حدّد القناة \"أخرى\".",
		"validate.sources_count":       "R11: اختر بين %d و%d من مصادر البيانات (حاليًا %d).",
		"validate.sources_other":       "R11: حدّد المصدر \"أخرى\".",
		"validate.consulted_required":  "R12: حدّد ما إذا كنت قد استشرت زملاء آخرين.",

		"submit.blocked_errors":  "يحتوي الاستبيان على أخطاء مانعة.",
		"submit.duplicate_email": "سبق إرسال هذا الاستبيان بهذا البريد الإلكتروني. يُسمح بإرسال واحد فقط.",
		"submit.save_failed":     "فشل الحفظ (قاعدة البيانات المحلية). احتفظ بنسخة JSON المقدمة.",

		"step.R1":   "مقدمة",
		"step.R2":   "التعريف بالمجيب",
		"step.R3":   "النطاق المؤسسي والاستراتيجية الوطنية",
		"step.R4":   "المجالات ذات الأولوية",
		"step.R5":   "الإحصاءات ذات الأولوية والتقييم",
		"step.R6":   "بُعد النوع الاجتماعي",
		"step.R7":   "أولويات النوع الاجتماعي",
		"step.R8":   "القدرات الإحصائية",
		"step.R9":   "توقعات الجودة",
		"step.R10":  "قنوات النشر",
		"step.R11":  "مصادر البيانات",
		"step.R12":  "الأسئلة الختامية",
		"step.SEND": "إرسال الاستبيان",
	},
}

// T returns the translated string for key in locale; falls back to English,
// then French, then the key itself.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["fr"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// IsRTL reports whether locale is rendered right-to-left.
func IsRTL(locale string) bool { return locale == "ar" }
