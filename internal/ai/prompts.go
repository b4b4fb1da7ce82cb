package ai

import (
	"strings"

	"github.com/joseph-ayodele/pdf-extractor/constants"
)

// Prompts are Russian-first because the documents are: the service handles
// mixed RU/EN text either way, but instructions in the document language
// measurably reduce name "corrections".

// promptPageText asks for a verbatim transcription of one page image.
const promptPageText = `Извлеки весь текст из этого изображения.
Сохрани структуру и форматирование.
Если есть таблицы, представь их в структурированном виде.
Отвечай только извлеченным текстом без дополнительных комментариев.`

// promptPageTables asks for structured table rows from one page image.
const promptPageTables = `Найди и извлеки все таблицы из этого изображения.
Для каждой найденной записи в таблице верни JSON объект со следующими полями:
- fio: ФИО (если есть)
- birth_date: дата рождения (если есть)
- position: должность (если есть)
- harmful_factors: факторы вредности (если есть)
- other: любая другая важная информация

Верни результат в формате JSON массива объектов.
Если таблиц нет, верни пустой массив [].`

// promptStage1Raw is the first round-trip of the direct document mode:
// a full verbatim transcript, with an explicit contract against "helpful"
// rewriting.
const promptStage1Raw = `Перепиши весь текст этого документа дословно, от начала до конца.

Правила:
- НЕ исправляй орфографию и НЕ переводи фамилии, имена и отчества — переноси их посимвольно как в документе.
- Сохраняй порядок и структуру документа: заголовки, абзацы, строки таблиц.
- Включи все числа, даты, колонтитулы и сноски.
- Ничего не пропускай и ничего не добавляй от себя.

Отвечай только текстом документа без комментариев.`

// promptStage2Verify feeds the stage-1 transcript back together with the
// original document and allows only character-level fixes.
const promptStage2Verify = `Ниже расшифровка документа, полученная автоматическим распознаванием. Сверь её с приложенным документом.

Исправь ТОЛЬКО ошибки распознавания отдельных символов (например, визуально похожие замены: О/0, З/3, б/6, l/1, П/Л).
ЗАПРЕЩЕНО переформулировать текст, исправлять "ошибки" в фамилиях, именах и значениях — они могут быть намеренными.

Верни полный исправленный текст без комментариев.

Расшифровка:
`

// buildStage3Prompt asks for a JSON array of records following the canonical
// schemas. Text only, the document is not re-attached.
func buildStage3Prompt(verifiedText string) string {
	var b strings.Builder
	b.WriteString(`Ниже текст документа. Найди в нём все организации или всех людей (записи медосмотров) и верни JSON массив объектов — по одному объекту на каждую найденную сущность.

Для организации используй поля:
`)
	b.WriteString(strings.Join(constants.OrganizationFields, ", "))
	b.WriteString(`

Для человека используй поля:
`)
	b.WriteString(strings.Join(constants.PersonFields, ", "))
	b.WriteString(`

Правила:
- Все значения — строки; для отсутствующих полей ставь пустую строку "".
- Данные, не подходящие ни под одно поле, помещай в "other".
- Не смешивай типы: документ описывает либо организации, либо людей.
- Отвечай только JSON массивом без пояснений. Если сущностей нет, верни [].

Текст документа:
`)
	b.WriteString(verifiedText)
	return b.String()
}
