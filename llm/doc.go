/*
包 llm 提供统一的 LLM 接入层：Provider 抽象、错误语义与提示词请求模型。

# 概述

本包屏蔽不同模型服务商在接口、鉴权与错误语义上的差异，对生成管线
暴露一致的请求与响应模型。核心接口是 [Provider]：给定系统提示词与
用户提示词，返回模型的原始文本输出或归类后的 [Error]。

# 错误语义

所有 Provider 错误统一归类到 [ErrorCode] 枚举，并标注可重试性：

  - 鉴权/权限/未找到/载荷过大：致命，立即失败
  - 限流/上游内部错误/模型过载：可重试，由 retry 子包的分层策略处理
  - 解析失败/空结果：致命，重试大概率无法修复结构性畸形的响应

面向用户的 Message 为固定文案，不得泄漏服务商内部细节。
*/
package llm
