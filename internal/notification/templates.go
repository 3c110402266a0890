package notification

const alertHTML = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background: {{.Accent}}; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
		.content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
		.project-info { background: white; padding: 15px; margin: 15px 0; border-radius: 6px; border-left: 4px solid {{.Accent}}; }
		.footer { text-align: center; padding: 20px; color: #6b7280; font-size: 12px; }
		.button { display: inline-block; padding: 10px 20px; background: #3b82f6; color: white; text-decoration: none; border-radius: 6px; margin-top: 10px; }
		.test-banner { background: #dbeafe; border: 2px solid #3b82f6; padding: 10px; border-radius: 6px; margin-bottom: 15px; }
	</style>
</head>
<body>
	<div class="container">
		{{- if .Test}}
		<div class="test-banner">
			<strong>Correo de prueba</strong>
			<p>Este correo fue enviado para verificar la configuración del sistema de alertas.</p>
			<p><strong>Destinatario:</strong> {{.Recipient}}</p>
		</div>
		{{- end}}
		<div class="header">
			<h1 style="margin: 0;">{{.Heading}}</h1>
		</div>
		<div class="content">
			<p>Hola,</p>
			<p>Te informamos sobre el siguiente proyecto:</p>
			<div class="project-info">
				<h2 style="margin-top: 0;">{{.ProjectName}}</h2>
				<p><strong>Cliente:</strong> {{.ClientName}}</p>
				<p><strong>Fecha de Vencimiento:</strong> {{.DueDate}}</p>
				<p><strong>Estado:</strong> {{.Status}}</p>
			</div>
			<p>Por favor, revisa el estado del proyecto y toma las acciones necesarias.</p>
			<a href="{{.ProjectsURL}}" class="button">Ver Proyectos</a>
		</div>
		<div class="footer">
			<p>Este es un correo automático del sistema de gestión de proyectos.</p>
			<p>Freelance Project Manager</p>
			<p>Generado: {{.GeneratedAt}}</p>
		</div>
	</div>
</body>
</html>`

const alertText = `{{if .Test}}[CORREO DE PRUEBA] Destinatario: {{.Recipient}}

{{end}}{{.TextHeading}}

Hola,

Te informamos sobre el siguiente proyecto:

Proyecto: {{.ProjectName}}
Cliente: {{.ClientName}}
Fecha de Vencimiento: {{.DueDate}}
Estado: {{.Status}}

Por favor, revisa el estado del proyecto y toma las acciones necesarias.

Ver proyectos: {{.ProjectsURL}}

---
Este es un correo automático del sistema de gestión de proyectos.
Freelance Project Manager
Generado: {{.GeneratedAt}}`
