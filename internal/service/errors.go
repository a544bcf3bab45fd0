// Package service 包含了推荐引擎的业务逻辑层。
package service

import "errors"

// 服务层的哨兵错误。零结果不是错误：空的匹配列表是合法的业务结果，
// 由上层编排逻辑决定是否放宽过滤条件重试。
var (
	// ErrEmptyDocument 表示简历文本为空，无法抽取，请求级致命错误。
	ErrEmptyDocument = errors.New("resume document contains no usable text")
	// ErrIndexUnavailable 表示职位向量索引不可达或未初始化，请求级致命错误。
	ErrIndexUnavailable = errors.New("job posting index is unavailable")
	// ErrAnalysisFailed 表示差距分析的结构化补全失败或不可解析，无回退值。
	ErrAnalysisFailed = errors.New("gap analysis completion failed")
)
