/*
包 schema 实现结构化数据管线的确定性后处理：从模型原始文本中
恢复候选 schema、清洗属性值、按属性需求表补全缺失项、并对最终
结果做 Schema.org 合规校验与模式一致性检查。

# 核心不变式

补全引擎绝不编造数据：一个缺失属性只有在能从已验证的
ContentAnalysis 元数据确定性派生时才会被填充，否则记录为省略。
LLM 允许对内容做创造性措辞，但结构完整性只能来自已验证数据——
这正是整条管线存在的理由。

# 类型覆盖

候选 schema 用 [Schema]（键值包）加 [Kind]（已知 @type 的封闭枚举）
表达：补全引擎对 Kind 做 switch，编译期即可检查类型覆盖；
未知 @type 落入 KindGeneric，走通用派生规则。
*/
package schema
