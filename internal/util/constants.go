package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
)

// 小组文件上传限制
const (
	MaxGroupFileSize = 20 << 20
	MimeImage        = "image/"
	MimePDF          = "application/pdf"
	MimeOctetStream  = "application/octet-stream"
)

var AllowedGroupFileExtensions = []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx", ".txt", ".md", ".zip", ".png", ".jpg", ".jpeg"}
