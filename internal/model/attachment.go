package model

// Attachment 是随一次发送附带的文件，Data 为 base64 编码内容。
// 发送后即丢弃，不会进入对话历史。
type Attachment struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// AttachmentInfo 是对外展示用的附件摘要，不包含内容。
type AttachmentInfo struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Size     int    `json:"size"`
}
