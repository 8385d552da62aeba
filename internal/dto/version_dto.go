package dto

// VersionDTO server version info response
// VersionDTO 服务端版本信息响应
type VersionDTO struct {
	Version   string `json:"version"`   // Software version // 软件版本
	GitTag    string `json:"gitTag"`    // Git tag of the build // 构建的 Git 标签
	BuildTime string `json:"buildTime"` // Build time // 构建时间
}
