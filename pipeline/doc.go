/*
包 pipeline 把各阶段组装成端到端的生成管线：

	预算 → 提示词 → Provider(分层重试) → 解析 → 清洗 → 补全 → 校验 → 模式检查

数据严格从左向右流动：每个阶段的输出是下一阶段的唯一输入，
单个请求内不存在并行。多个请求之间完全独立、可全并发——
唯一共享的对象是只读的属性需求表与 Provider 凭证。

管线要么整体成功并返回非空且已校验的 schema 列表，
要么整体失败并抛出单个结构化错误；绝不返回半成品。
*/
package pipeline
