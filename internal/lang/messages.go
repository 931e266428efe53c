package lang

const (
	StartWelcome   MessageID = "command.start"
	HelpUsage      MessageID = "command.help"
	UnknownInput   MessageID = "general.unknown"
	DeveloperLabel MessageID = "general.developer_button"

	StatusPreparing         MessageID = "status.preparing"
	StatusDownloaded        MessageID = "status.downloaded"
	StatusUploadingVideo    MessageID = "status.uploading_video"
	StatusUploadingDocument MessageID = "status.uploading_document"
	SizeUnknown             MessageID = "status.size_unknown"
	UploaderUnknown         MessageID = "status.uploader_unknown"

	ErrNoLink         MessageID = "error.link.not_found"
	ErrDownloadFailed MessageID = "error.download.failed"
	ErrFileMissing    MessageID = "error.download.file_missing"
	ErrUploadFailed   MessageID = "error.upload.failed"
	ErrRateLimited    MessageID = "error.general.rate_limit_exceeded"
	ErrInternal       MessageID = "error.general.internal_error"
)

var catalogs = map[string]map[MessageID]string{
	"en": {
		StartWelcome: "Send me a video link (YouTube, Facebook, Instagram, etc.) and I'll download it and return the file.\n\n" +
			"Note: some sites require cookies or are restricted; if download fails I'll return useful error info.",
		HelpUsage: "Usage:\n" +
			"- Send a link (one per message) and I will try to download and send back.\n" +
			"- If the file is big I may send as document or give the direct extract info.",
		UnknownInput:   "I didn't understand that. Send a link and I'll try to download it.",
		DeveloperLabel: "👨‍💻 Developer",

		StatusPreparing:         "🔎 Preparing to download...\n%s",
		StatusDownloaded:        "⬇️ Downloaded: <b>%s</b> (%s). Preparing to send...",
		StatusUploadingVideo:    "📤 Uploading <b>%s</b> as video...",
		StatusUploadingDocument: "📤 Uploading <b>%s</b> as file...",
		SizeUnknown:             "unknown size",
		UploaderUnknown:         "unknown",

		ErrNoLink: "I couldn't find a link in your message. Send a single URL.",
		ErrDownloadFailed: "❌ Download failed: %s\n\n" +
			"Possible reasons: private/restricted video, cookies required, or yt-dlp extractor issue.",
		ErrFileMissing: "❌ yt-dlp did not produce a file.",
		ErrUploadFailed: "⚠️ I couldn't upload the file to Telegram (maybe it's too large).\n" +
			"Original link: %s\nTitle: %s\nUploader: %s\nSize: %s",
		ErrRateLimited: "⏳ Too many requests. Please wait a bit before sending another link.",
		ErrInternal:    "❌ Something went wrong while handling your message.",
	},
	"ru": {
		StartWelcome: "Пришлите ссылку на видео (YouTube, Facebook, Instagram и т.д.), я скачаю его и отправлю файл.\n\n" +
			"Некоторые сайты требуют cookies или ограничивают доступ; если загрузка не удастся, я пришлю подробности ошибки.",
		HelpUsage: "Как пользоваться:\n" +
			"- Отправьте ссылку (одну в сообщении), я попробую скачать и прислать видео.\n" +
			"- Большой файл придет документом или вместо него придет информация о видео.",
		UnknownInput:   "Не понял сообщение. Пришлите ссылку, и я попробую скачать видео.",
		DeveloperLabel: "👨‍💻 Разработчик",

		StatusPreparing:         "🔎 Готовлюсь к загрузке...\n%s",
		StatusDownloaded:        "⬇️ Скачано: <b>%s</b> (%s). Готовлю отправку...",
		StatusUploadingVideo:    "📤 Отправляю <b>%s</b> как видео...",
		StatusUploadingDocument: "📤 Отправляю <b>%s</b> как файл...",
		SizeUnknown:             "размер неизвестен",
		UploaderUnknown:         "неизвестен",

		ErrNoLink: "Не нашел ссылку в сообщении. Отправьте одну ссылку.",
		ErrDownloadFailed: "❌ Не удалось скачать: %s\n\n" +
			"Возможные причины: приватное или ограниченное видео, нужны cookies, или ошибка экстрактора yt-dlp.",
		ErrFileMissing: "❌ yt-dlp не создал файл.",
		ErrUploadFailed: "⚠️ Не удалось загрузить файл в Telegram (возможно, он слишком большой).\n" +
			"Ссылка: %s\nНазвание: %s\nАвтор: %s\nРазмер: %s",
		ErrRateLimited: "⏳ Слишком много запросов. Подождите немного перед следующей ссылкой.",
		ErrInternal:    "❌ Что-то пошло не так при обработке сообщения.",
	},
}
