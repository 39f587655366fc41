package seed

import "github.com/ManuelReschke/SubDesk/app/models"

var DefaultFaqs = []models.Faq{
	{Question: "O sistema fica com a minha marca, minhas logo e minhas cores?", Answer: "Sim! O sistema vai ficar com seu domínio e toda sua marca, o sistema será seu.", DisplayOrder: 0},
	{Question: "Como funciona com os pagamentos do Asaas?", Answer: "Você deve criar uma conta no asaas e aprovar, então nós vamos configurar a sua conta no sistema e todo pagamento de mensalidade que o cliente pagar irá para a sua conta direto.", DisplayOrder: 1},
	{Question: "Quais são as formas de pagamento pelo cliente?", Answer: "Atualmente apenas cartão de crédito para evitar a inadimplência.", DisplayOrder: 2},
	{Question: "Posso hospedar o sistema na minha hospedagem?", Answer: "Sim! Porém precisa de um vps, não serve hospedagem compartilhada como hostinger, hostgator e outras, precisa de um vps.", DisplayOrder: 3},
	{Question: "Tenho acesso ao código para alterações?", Answer: "Não, o acesso ao código é bloqueado e ofuscado para evitar pirataria.", DisplayOrder: 4},
	{Question: "Como funciona o suporte e atualizações?", Answer: "Nós vamos prestar suporte no sistema garantindo que o sistema fique sempre online com backup diário, correções de erro.", DisplayOrder: 5},
	{Question: "Posso solicitar novas funções?", Answer: "Sim! Você pode solicitar novas funções no sistema sem pagar a mais por isso, porém elas irão entrar na fila de desenvolvimento.", DisplayOrder: 6},
	{Question: "Quanto eu preciso pagar para ter acesso ao sistema?", Answer: "Você vai pagar apenas a assinatura mensal de R$ 297,00 no cartão.", DisplayOrder: 7},
	{Question: "Vou ter acesso aos sistemas que forem lançados?", Answer: "Sim! Em breve vamos lançar o sistema completo de imobiliária com agente de atendimento que irá mostrar os imóveis e qualificar os leads passando para o corretor.", DisplayOrder: 8},
	{Question: "Posso sugerir novos sistemas?", Answer: "Sim! Pode nos dar sugestão de sistemas para desenvolvermos.", DisplayOrder: 9},
	{Question: "Quais as tecnologias que o sistema foi feito?", Answer: "Front end - React, Back end - Go com Fiber, Banco - MySQL, API - Go.", DisplayOrder: 10},
	{Question: "O sistema tem app mobile para os profissionais?", Answer: "Ainda não mas está no roadmap.", DisplayOrder: 11},
	{Question: "Posso revender o sistema para quantos clientes quiser?", Answer: "Sim! Você pode cadastrar e vender para quantos clientes quiser. Não há limite de usuários ou empresas ativas.", DisplayOrder: 12},
	{Question: "Posso definir meus próprios preços e planos?", Answer: "Sim! Você tem total liberdade para definir o valor dos planos e criar sua estratégia comercial.", DisplayOrder: 13},
	{Question: "Posso cancelar quando quiser?", Answer: "Sim! O cancelamento pode ser feito a qualquer momento, sem multa ou fidelidade.", DisplayOrder: 14},
	{Question: "Há algum custo de setup ou taxa inicial?", Answer: "Não! Você paga apenas a mensalidade de R$ 297,00, sem taxa de ativação.", DisplayOrder: 15},
	{Question: "O sistema é white label?", Answer: "Sim! Ele é totalmente white label. O cliente nunca verá o nome da nossa empresa, apenas o da sua marca.", DisplayOrder: 16},
	{Question: "Vocês fornecem algum material de vendas ou treinamento?", Answer: "Sim! Após ativar sua licença, você recebe vídeos de demonstração para apresentar o sistema aos seus clientes.", DisplayOrder: 17},
	{Question: "Qual o prazo para entrega após o pagamento?", Answer: "Em até 48 horas o seu sistema é entregue com sua marca, cores e domínio configurado. Necessário domínio no Cloudflare.", DisplayOrder: 18},
	{Question: "Posso usar meu próprio domínio personalizado (ex: sistema.minhamarca.com)?", Answer: "Sim! Nós configuramos o sistema para o domínio que você escolher.", DisplayOrder: 19},
	{Question: "Vocês oferecem a Evolution para meus clientes?", Answer: "Sim! Oferecemos também a Evolution para usar no sistema.", DisplayOrder: 20},
	{Question: "Vocês fornecem lista de empresas para prospecção?", Answer: "Sim! Fornecemos lista das empresas de todo o Brasil com o celular do proprietário para você prospectar.", DisplayOrder: 21},
}
