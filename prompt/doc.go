// 包 prompt 负责生成请求的提示词构建：内容预算器在 token 上限内
// 按优先级保留页面内容，构建器在此之上渲染确定性的系统/用户提示词。
// 两者都是纯函数式组件：无 I/O、无随机性，相同输入必得相同输出。
package prompt
