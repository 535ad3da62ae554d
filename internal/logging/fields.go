package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// VersionFields 提供版本分区与产物类型字段，供获取流水线日志复用。
func VersionFields(action, version, artifact string) logrus.Fields {
	return logrus.Fields{
		"action":   action,
		"version":  version,
		"artifact": artifact,
	}
}

// ToolFields 描述一次 MCP 工具调用。
func ToolFields(tool string, fallback bool) logrus.Fields {
	return logrus.Fields{
		"action":   "tool_call",
		"tool":     tool,
		"fallback": fallback,
	}
}
